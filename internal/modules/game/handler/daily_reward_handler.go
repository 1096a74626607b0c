package handler

import (
	"github.com/labstack/echo/v4"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/response"
)

// DailyRewardHandler 每日奖励接口
type DailyRewardHandler struct {
	dailyRewardService *service.DailyRewardService
	respWriter         response.Writer
}

// NewDailyRewardHandler 创建每日奖励接口处理器
func NewDailyRewardHandler(container *service.ServiceContainer, respWriter response.Writer) *DailyRewardHandler {
	return &DailyRewardHandler{
		dailyRewardService: container.DailyRewardService,
		respWriter:         respWriter,
	}
}

// Claim 领取每日奖励
func (h *DailyRewardHandler) Claim(c echo.Context) error {
	playerID := c.Param("player_id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	result, events, err := h.dailyRewardService.Claim(c.Request().Context(), playerID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	dispatchEvents(c.Request().Context(), events)

	return response.EchoOK(c, h.respWriter, result)
}

// Status 查询每日奖励领取状态
func (h *DailyRewardHandler) Status(c echo.Context) error {
	playerID := c.Param("player_id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	status, err := h.dailyRewardService.Status(c.Request().Context(), playerID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, status)
}
