package handler

import (
	"github.com/labstack/echo/v4"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/response"
)

// InventoryHandler 背包接口
type InventoryHandler struct {
	inventoryService *service.InventoryService
	respWriter       response.Writer
}

// NewInventoryHandler 创建背包接口处理器
func NewInventoryHandler(container *service.ServiceContainer, respWriter response.Writer) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: container.InventoryService,
		respWriter:       respWriter,
	}
}

// ==================== HTTP Request/Response Models ====================

// InventoryMutationRequest 背包增减请求
type InventoryMutationRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// EquipRequest 装备状态变更请求
type EquipRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Equipped bool   `json:"equipped"`
}

// ==================== HTTP Handlers ====================

// GetInventory 查询玩家背包
func (h *InventoryHandler) GetInventory(c echo.Context) error {
	playerID := c.Param("player_id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	items, err := h.inventoryService.GetInventory(c.Request().Context(), playerID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, items)
}

// GetInventoryItem 查询背包中单个物品
func (h *InventoryHandler) GetInventoryItem(c echo.Context) error {
	playerID := c.Param("player_id")
	itemID := c.Param("item_id")
	if playerID == "" || itemID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID或物品ID")
	}

	item, err := h.inventoryService.GetItem(c.Request().Context(), playerID, itemID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, item)
}

// GetInventoryStats 查询背包统计
func (h *InventoryHandler) GetInventoryStats(c echo.Context) error {
	playerID := c.Param("player_id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	stats, err := h.inventoryService.GetStats(c.Request().Context(), playerID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, stats)
}

// AddItem 向背包添加物品
func (h *InventoryHandler) AddItem(c echo.Context) error {
	playerID := c.Param("player_id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	var req InventoryMutationRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	if err := h.inventoryService.AddItem(c.Request().Context(), playerID, req.ItemID, req.Quantity); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, response.EmptyData{})
}

// RemoveItem 从背包移除物品
func (h *InventoryHandler) RemoveItem(c echo.Context) error {
	playerID := c.Param("player_id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	var req InventoryMutationRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	if err := h.inventoryService.RemoveItem(c.Request().Context(), playerID, req.ItemID, req.Quantity); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, response.EmptyData{})
}

// SetEquipped 变更装备状态
func (h *InventoryHandler) SetEquipped(c echo.Context) error {
	playerID := c.Param("player_id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	var req EquipRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	if err := h.inventoryService.SetEquipped(c.Request().Context(), playerID, req.ItemID, req.Equipped); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, response.EmptyData{})
}
