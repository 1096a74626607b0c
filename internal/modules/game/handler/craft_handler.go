package handler

import (
	"github.com/labstack/echo/v4"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/response"
)

// CraftHandler 锻造接口
type CraftHandler struct {
	craftService *service.CraftService
	respWriter   response.Writer
}

// NewCraftHandler 创建锻造接口处理器
func NewCraftHandler(container *service.ServiceContainer, respWriter response.Writer) *CraftHandler {
	return &CraftHandler{
		craftService: container.CraftService,
		respWriter:   respWriter,
	}
}

// ==================== HTTP Request/Response Models ====================

// CraftRequest 锻造请求
type CraftRequest struct {
	PlayerID string `json:"player_id" validate:"required,uuid4"`
	RecipeID string `json:"recipe_id" validate:"required"`
}

// ==================== HTTP Handlers ====================

// ListRecipes 查询配方列表及学习状态
func (h *CraftHandler) ListRecipes(c echo.Context) error {
	playerID := c.Param("player_id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	recipes, err := h.craftService.ListRecipes(c.Request().Context(), playerID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, recipes)
}

// LearnRecipe 学习配方
func (h *CraftHandler) LearnRecipe(c echo.Context) error {
	var req CraftRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	if err := h.craftService.LearnRecipe(c.Request().Context(), req.PlayerID, req.RecipeID); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, response.EmptyData{})
}

// Craft 执行一次锻造
func (h *CraftHandler) Craft(c echo.Context) error {
	var req CraftRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	result, err := h.craftService.Craft(c.Request().Context(), req.PlayerID, req.RecipeID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, result)
}
