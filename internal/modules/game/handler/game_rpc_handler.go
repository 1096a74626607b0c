package handler

import (
	"context"
	"encoding/json"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/xerrors"
)

// GameRPCHandler 供其他模块（如 Admin Server）通过 mqant RPC 调用。
// 载荷统一为 JSON 编码的字节流。
type GameRPCHandler struct {
	playerService  *service.PlayerService
	rankingService *service.RankingService
}

// NewGameRPCHandler 创建 RPC 处理器
func NewGameRPCHandler(container *service.ServiceContainer) *GameRPCHandler {
	return &GameRPCHandler{
		playerService:  container.PlayerService,
		rankingService: container.RankingService,
	}
}

type getPlayerSummaryRequest struct {
	PlayerID string `json:"player_id"`
}

type playerSummaryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	Score int    `json:"score"`
	Rank  int    `json:"rank,omitempty"`
}

// GetPlayerSummary 查询玩家摘要信息
func (h *GameRPCHandler) GetPlayerSummary(data []byte) ([]byte, error) {
	var req getPlayerSummaryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, xerrors.NewValidationError("request", "invalid json data")
	}
	if req.PlayerID == "" {
		return nil, xerrors.NewValidationError("player_id", "player_id is required")
	}

	player, err := h.playerService.GetPlayer(context.Background(), req.PlayerID)
	if err != nil {
		return nil, err
	}

	resp := playerSummaryResponse{
		ID:    player.ID,
		Name:  player.Name,
		Level: player.Level,
		Score: player.Score,
	}
	if player.Rank.Valid {
		resp.Rank = player.Rank.Int
	}
	return json.Marshal(resp)
}

type getTopRankingsRequest struct {
	Limit int `json:"limit"`
}

// GetTopRankings 查询排行榜前 N 名
func (h *GameRPCHandler) GetTopRankings(data []byte) ([]byte, error) {
	var req getTopRankingsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, xerrors.NewValidationError("request", "invalid json data")
	}

	players, err := h.rankingService.TopN(context.Background(), req.Limit)
	if err != nil {
		return nil, err
	}
	return json.Marshal(toRankingEntries(players))
}
