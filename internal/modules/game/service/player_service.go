package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"emberfall-server/internal/modules/game/combat"
	"emberfall-server/internal/pkg/config"
	"emberfall-server/internal/pkg/log"
	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
)

// 新建玩家的初始属性
const (
	initialHealth = 100
	initialMana   = 50
	initialStat   = 10
	initialGold   = 100
)

// PlayerService 玩家服务
type PlayerService struct {
	db         *sql.DB
	playerRepo interfaces.PlayerRepository
	cfg        *config.GameConfig
	logger     log.Logger
}

// NewPlayerService 创建玩家服务
func NewPlayerService(db *sql.DB, playerRepo interfaces.PlayerRepository, cfg *config.GameConfig) *PlayerService {
	return &PlayerService{
		db:         db,
		playerRepo: playerRepo,
		cfg:        cfg,
		logger:     log.GetLogger(),
	}
}

// CreatePlayerRequest 创建玩家请求
type CreatePlayerRequest struct {
	Name string `json:"name" validate:"required,min=2,max=32"`
}

// CreatePlayer 创建玩家
func (s *PlayerService) CreatePlayer(ctx context.Context, req *CreatePlayerRequest) (*entity.Player, error) {
	exists, err := s.playerRepo.CheckExistsByName(ctx, req.Name)
	if err != nil {
		return nil, xerrors.NewDatabaseError("check_name", "players", err)
	}
	if exists {
		return nil, xerrors.NewConflictError("player", "玩家名称已被占用")
	}

	player := &entity.Player{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Level:        1,
		Health:       initialHealth,
		MaxHealth:    initialHealth,
		Mana:         initialMana,
		MaxMana:      initialMana,
		Gold:         initialGold,
		Strength:     initialStat,
		Defense:      initialStat,
		Agility:      initialStat,
		Intelligence: initialStat,
	}
	player.Score = combat.Score(player.Level, player.Experience)

	if err := s.playerRepo.Create(ctx, s.db, player); err != nil {
		return nil, xerrors.NewPersistenceError("create_player", err)
	}

	s.logger.InfoContext(ctx, "玩家创建成功",
		log.String("player_id", player.ID),
		log.String("name", player.Name),
	)
	return player, nil
}

// GetPlayer 查询玩家
func (s *PlayerService) GetPlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewPlayerNotFoundError(playerID)
		}
		return nil, xerrors.NewDatabaseError("get_player", "players", err)
	}
	return player, nil
}

// Heal 治疗玩家到满血满蓝，按配置扣除金币。
// 金币校验与扣减、状态恢复在同一事务内提交。
func (s *PlayerService) Heal(ctx context.Context, playerID string) (*entity.Player, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, xerrors.NewPersistenceError("begin_heal_tx", err)
	}
	defer tx.Rollback()

	player, err := s.playerRepo.GetByIDForUpdate(ctx, tx, playerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewPlayerNotFoundError(playerID)
		}
		return nil, xerrors.NewDatabaseError("get_player", "players", err)
	}

	if player.Gold < s.cfg.HealGoldCost {
		return nil, xerrors.NewInsufficientGoldError(s.cfg.HealGoldCost, player.Gold)
	}

	player.Gold -= s.cfg.HealGoldCost
	combat.Heal(player)

	if err := s.playerRepo.Update(ctx, tx, player); err != nil {
		return nil, xerrors.NewPersistenceError("update_player", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, xerrors.NewPersistenceError("commit_heal_tx", err)
	}

	return player, nil
}

// AllocateStatPoints 属性加点
func (s *PlayerService) AllocateStatPoints(ctx context.Context, playerID, stat string, points int) (*entity.Player, error) {
	if points <= 0 {
		return nil, xerrors.NewValidationError("points", "加点数量必须大于0")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, xerrors.NewPersistenceError("begin_allocate_tx", err)
	}
	defer tx.Rollback()

	player, err := s.playerRepo.GetByIDForUpdate(ctx, tx, playerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewPlayerNotFoundError(playerID)
		}
		return nil, xerrors.NewDatabaseError("get_player", "players", err)
	}

	if player.StatPoints < points {
		return nil, xerrors.FromCode(xerrors.CodePlayerStatInvalid).
			WithMetadata("available", player.StatPoints).
			WithMetadata("requested", points)
	}

	switch stat {
	case "strength":
		player.Strength += points
	case "defense":
		player.Defense += points
	case "agility":
		player.Agility += points
	case "intelligence":
		player.Intelligence += points
	default:
		return nil, xerrors.NewValidationError("stat", "未知属性: "+stat)
	}
	player.StatPoints -= points

	if err := s.playerRepo.Update(ctx, tx, player); err != nil {
		return nil, xerrors.NewPersistenceError("update_player", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, xerrors.NewPersistenceError("commit_allocate_tx", err)
	}

	return player, nil
}
