package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/response"
	"emberfall-server/internal/repository/entity"
)

// RankingHandler 排行榜接口
type RankingHandler struct {
	rankingService *service.RankingService
	respWriter     response.Writer
}

// NewRankingHandler 创建排行榜接口处理器
func NewRankingHandler(container *service.ServiceContainer, respWriter response.Writer) *RankingHandler {
	return &RankingHandler{
		rankingService: container.RankingService,
		respWriter:     respWriter,
	}
}

// ==================== HTTP Request/Response Models ====================

// RankingEntry 排行榜条目
type RankingEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Score    int    `json:"score"`
}

func toRankingEntries(players []*entity.Player) []*RankingEntry {
	entries := make([]*RankingEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, &RankingEntry{
			Rank:     p.Rank.Int,
			PlayerID: p.ID,
			Name:     p.Name,
			Level:    p.Level,
			Score:    p.Score,
		})
	}
	return entries
}

// ==================== HTTP Handlers ====================

// GetTopRankings 查询排行榜前 N 名
func (h *RankingHandler) GetTopRankings(c echo.Context) error {
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			return response.EchoBadRequest(c, h.respWriter, "limit 必须为 1-100 的整数")
		}
		limit = n
	}

	players, err := h.rankingService.TopN(c.Request().Context(), limit)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, toRankingEntries(players))
}

// RefreshRankings 手动触发一次全量排名重算
func (h *RankingHandler) RefreshRankings(c echo.Context) error {
	ctx := c.Request().Context()

	changed, err := h.rankingService.RecalculateAllScores(ctx)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	events, err := h.rankingService.AssignRanks(ctx)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	dispatchEvents(ctx, events)

	return response.EchoOK(c, h.respWriter, map[string]int{
		"scores_changed": changed,
		"ranks_changed":  len(events),
	})
}

// UpdatePlayerRanking 更新单个玩家的积分与排名
func (h *RankingHandler) UpdatePlayerRanking(c echo.Context) error {
	playerID := c.Param("player_id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	events, err := h.rankingService.UpdatePlayerRanking(c.Request().Context(), playerID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	dispatchEvents(c.Request().Context(), events)

	return response.EchoOK(c, h.respWriter, response.EmptyData{})
}
