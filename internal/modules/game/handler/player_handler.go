package handler

import (
	"github.com/labstack/echo/v4"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/response"
	"emberfall-server/internal/repository/entity"
)

// PlayerHandler 玩家接口
type PlayerHandler struct {
	playerService *service.PlayerService
	respWriter    response.Writer
}

// NewPlayerHandler 创建玩家接口处理器
func NewPlayerHandler(container *service.ServiceContainer, respWriter response.Writer) *PlayerHandler {
	return &PlayerHandler{
		playerService: container.PlayerService,
		respWriter:    respWriter,
	}
}

// ==================== HTTP Request/Response Models ====================

// CreatePlayerRequest 创建玩家请求
type CreatePlayerRequest struct {
	Name string `json:"name" validate:"required,min=2,max=32"`
}

// AllocateStatRequest 属性加点请求
type AllocateStatRequest struct {
	Stat   string `json:"stat" validate:"required,oneof=strength defense agility intelligence"`
	Points int    `json:"points" validate:"required,min=1"`
}

// PlayerResponse 玩家信息响应
type PlayerResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Level        int    `json:"level"`
	Experience   int    `json:"experience"`
	StatPoints   int    `json:"stat_points"`
	Health       int    `json:"health"`
	MaxHealth    int    `json:"max_health"`
	Mana         int    `json:"mana"`
	MaxMana      int    `json:"max_mana"`
	Gold         int    `json:"gold"`
	Strength     int    `json:"strength"`
	Defense      int    `json:"defense"`
	Agility      int    `json:"agility"`
	Intelligence int    `json:"intelligence"`
	Score        int    `json:"score"`
	Rank         *int   `json:"rank,omitempty"`
}

func toPlayerResponse(player *entity.Player) *PlayerResponse {
	resp := &PlayerResponse{
		ID:           player.ID,
		Name:         player.Name,
		Level:        player.Level,
		Experience:   player.Experience,
		StatPoints:   player.StatPoints,
		Health:       player.Health,
		MaxHealth:    player.MaxHealth,
		Mana:         player.Mana,
		MaxMana:      player.MaxMana,
		Gold:         player.Gold,
		Strength:     player.Strength,
		Defense:      player.Defense,
		Agility:      player.Agility,
		Intelligence: player.Intelligence,
		Score:        player.Score,
	}
	if player.Rank.Valid {
		rank := player.Rank.Int
		resp.Rank = &rank
	}
	return resp
}

// ==================== HTTP Handlers ====================

// CreatePlayer 创建玩家
func (h *PlayerHandler) CreatePlayer(c echo.Context) error {
	var req CreatePlayerRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	player, err := h.playerService.CreatePlayer(c.Request().Context(), &service.CreatePlayerRequest{
		Name: req.Name,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, toPlayerResponse(player))
}

// GetPlayer 查询玩家信息
func (h *PlayerHandler) GetPlayer(c echo.Context) error {
	playerID := c.Param("id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	player, err := h.playerService.GetPlayer(c.Request().Context(), playerID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, toPlayerResponse(player))
}

// Heal 治疗玩家
func (h *PlayerHandler) Heal(c echo.Context) error {
	playerID := c.Param("id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	player, err := h.playerService.Heal(c.Request().Context(), playerID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, toPlayerResponse(player))
}

// AllocateStat 属性加点
func (h *PlayerHandler) AllocateStat(c echo.Context) error {
	playerID := c.Param("id")
	if playerID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少玩家ID")
	}

	var req AllocateStatRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	player, err := h.playerService.AllocateStatPoints(c.Request().Context(), playerID, req.Stat, req.Points)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, toPlayerResponse(player))
}
