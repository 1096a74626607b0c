package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/response"
	"emberfall-server/internal/repository/query"
)

// CombatHandler 战斗接口
type CombatHandler struct {
	combatService *service.CombatService
	respWriter    response.Writer
}

// NewCombatHandler 创建战斗接口处理器
func NewCombatHandler(container *service.ServiceContainer, respWriter response.Writer) *CombatHandler {
	return &CombatHandler{
		combatService: container.CombatService,
		respWriter:    respWriter,
	}
}

// ==================== HTTP Handlers ====================

// StartBattle 发起战斗
func (h *CombatHandler) StartBattle(c echo.Context) error {
	var req service.StartBattleRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	result, events, err := h.combatService.StartBattle(c.Request().Context(), &req)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	dispatchEvents(c.Request().Context(), events)

	return response.EchoOK(c, h.respWriter, result)
}

// GetBattle 查询战斗记录
func (h *CombatHandler) GetBattle(c echo.Context) error {
	battleID := c.Param("id")
	if battleID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少战斗ID")
	}

	record, err := h.combatService.GetBattle(c.Request().Context(), battleID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, record)
}

// BattleHistoryResponse 战斗历史响应
type BattleHistoryResponse struct {
	Records    interface{}             `json:"records"`
	Pagination *query.PaginationResult `json:"pagination"`
}

// GetBattleHistory 查询玩家战斗历史
func (h *CombatHandler) GetBattleHistory(c echo.Context) error {
	playerID := c.Param("player_id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	params := query.BattleHistoryParams{PlayerID: playerID}
	if bt := c.QueryParam("battle_type"); bt != "" {
		params.BattleType = &bt
	}
	params.Pagination = parsePagination(c)

	records, pagination, err := h.combatService.GetBattleHistory(c.Request().Context(), params)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, &BattleHistoryResponse{
		Records:    records,
		Pagination: pagination,
	})
}

// parsePagination 从查询参数解析分页，非法值交由 Validate 兜底。
func parsePagination(c echo.Context) query.Pagination {
	var p query.Pagination
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Page = n
		}
	}
	if v := c.QueryParam("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.PageSize = n
		}
	}
	return p
}
