package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"emberfall-server/internal/modules/game/combat"
	"emberfall-server/internal/pkg/config"
	"emberfall-server/internal/pkg/log"
	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
	"emberfall-server/internal/repository/query"
)

const serviceName = "game-server"

// CombatService 战斗服务
type CombatService struct {
	db             *sql.DB
	playerRepo     interfaces.PlayerRepository
	playerItemRepo interfaces.PlayerItemRepository
	itemRepo       interfaces.ItemRepository
	battleRepo     interfaces.BattleRecordRepository
	resolver       *combat.Resolver
	cfg            *config.GameConfig
	metrics        *metrics.BusinessMetrics
	logger         log.Logger
}

// NewCombatService 创建战斗服务
func NewCombatService(
	db *sql.DB,
	playerRepo interfaces.PlayerRepository,
	playerItemRepo interfaces.PlayerItemRepository,
	itemRepo interfaces.ItemRepository,
	battleRepo interfaces.BattleRecordRepository,
	cfg *config.GameConfig,
	bm *metrics.BusinessMetrics,
) *CombatService {
	return &CombatService{
		db:             db,
		playerRepo:     playerRepo,
		playerItemRepo: playerItemRepo,
		itemRepo:       itemRepo,
		battleRepo:     battleRepo,
		resolver:       combat.NewResolver().WithMaxRounds(cfg.BattleRoundCap),
		cfg:            cfg,
		metrics:        bm,
		logger:         log.GetLogger(),
	}
}

// StartBattleRequest 发起战斗请求
type StartBattleRequest struct {
	AttackerID    string  `json:"attacker_id" validate:"required,uuid4"`
	DefenderID    *string `json:"defender_id,omitempty" validate:"omitempty,uuid4"`
	OpponentName  *string `json:"opponent_name,omitempty"`
	OpponentLevel *int    `json:"opponent_level,omitempty" validate:"omitempty,min=1"`
	BattleType    string  `json:"battle_type" validate:"required,oneof=pve pvp"`
}

// BattleResult 战斗结果
type BattleResult struct {
	Record  *entity.BattleRecord `json:"record"`
	Outcome *combat.Outcome      `json:"outcome"`
}

// StartBattle 发起一场战斗并结算奖励。
// 奖励发放（经验、金币、升级、战后血量）与战斗记录写入
// 在同一事务内提交，要么全部生效要么全部回滚。
// 领域事件由调用方分发，本方法只负责返回。
func (s *CombatService) StartBattle(ctx context.Context, req *StartBattleRequest) (*BattleResult, []combat.DomainEvent, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, xerrors.NewPersistenceError("begin_battle_tx", err)
	}
	defer tx.Rollback()

	attacker, err := s.playerRepo.GetByIDForUpdate(ctx, tx, req.AttackerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, xerrors.NewPlayerNotFoundError(req.AttackerID)
		}
		return nil, nil, xerrors.NewDatabaseError("get_attacker", "players", err)
	}

	attackerStats, err := s.buildPlayerStats(ctx, attacker)
	if err != nil {
		return nil, nil, err
	}

	var (
		defenderStats combat.CombatantStats
		defender      *entity.Player
		npcLevel      int
	)
	if req.BattleType == entity.BattleTypePVP {
		defender, err = s.playerRepo.GetByIDForUpdate(ctx, tx, *req.DefenderID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, nil, xerrors.NewPlayerNotFoundError(*req.DefenderID)
			}
			return nil, nil, xerrors.NewDatabaseError("get_defender", "players", err)
		}
		defenderStats, err = s.buildPlayerStats(ctx, defender)
		if err != nil {
			return nil, nil, err
		}
	} else {
		npcLevel = 1
		if req.OpponentLevel != nil {
			npcLevel = *req.OpponentLevel
		}
		name := "野怪"
		if req.OpponentName != nil && *req.OpponentName != "" {
			name = *req.OpponentName
		}
		defenderStats = combat.NewNPCStats(name, npcLevel)
	}

	outcome, err := s.resolver.Resolve(attackerStats, defenderStats)
	if err != nil {
		return nil, nil, err
	}

	// 奖励只发给获胜的进攻方
	var expGained, goldGained int
	if outcome.AttackerWon() {
		if req.BattleType == entity.BattleTypePVE {
			expGained, goldGained = combat.PVEReward(npcLevel)
		} else {
			expGained = s.cfg.PvPExperienceReward
			goldGained = s.cfg.PvPGoldReward
		}
		expGained = int(float64(expGained) * s.cfg.ExperienceMultiplier)
		goldGained = int(float64(goldGained) * s.cfg.GoldMultiplier)
	}

	events := make([]combat.DomainEvent, 0, 2)

	oldLevel := attacker.Level
	if expGained > 0 {
		combat.ApplyExperience(attacker, expGained)
	}
	attacker.Gold += goldGained

	// 战后进攻方至少保留 1 点血，升级的满血优先
	if attacker.Level == oldLevel {
		attacker.Health = outcome.AttackerHP
		if attacker.Health < 1 {
			attacker.Health = 1
		}
	}
	attacker.Score = combat.Score(attacker.Level, attacker.Experience)

	if err := s.playerRepo.Update(ctx, tx, attacker); err != nil {
		return nil, nil, xerrors.NewPersistenceError("update_attacker", err)
	}

	if defender != nil {
		defender.Health = outcome.DefenderHP
		if defender.Health < 1 {
			defender.Health = 1
		}
		if err := s.playerRepo.Update(ctx, tx, defender); err != nil {
			return nil, nil, xerrors.NewPersistenceError("update_defender", err)
		}
	}

	record, err := s.buildRecord(req, attacker, defender, npcLevel, outcome, expGained, goldGained)
	if err != nil {
		return nil, nil, err
	}
	if err := s.battleRepo.Create(ctx, tx, record); err != nil {
		return nil, nil, xerrors.NewPersistenceError("create_battle_record", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, xerrors.NewPersistenceError("commit_battle_tx", err)
	}

	if attacker.Level > oldLevel {
		events = append(events, combat.LevelUpEvent{
			PlayerID: attacker.ID,
			OldLevel: oldLevel,
			NewLevel: attacker.Level,
		})
	}
	events = append(events, combat.BattleCompletedEvent{
		BattleID:   record.ID,
		AttackerID: record.AttackerID,
		DefenderID: record.DefenderID.String,
		BattleType: record.BattleType,
		WinnerID:   record.WinnerID.String,
		Rounds:     record.Rounds,
		ExpGained:  expGained,
		GoldGained: goldGained,
	})

	s.metrics.RecordBattle(req.BattleType, outcome.Winner, outcome.Rounds, serviceName)
	s.logger.InfoContext(ctx, "战斗结算完成",
		log.String("battle_id", record.ID),
		log.String("attacker_id", attacker.ID),
		log.String("winner", outcome.Winner),
		log.Int("rounds", outcome.Rounds),
	)

	return &BattleResult{Record: record, Outcome: outcome}, events, nil
}

// validateRequest 战斗请求的前置校验，在回合循环开始前失败
func (s *CombatService) validateRequest(req *StartBattleRequest) error {
	switch req.BattleType {
	case entity.BattleTypePVP:
		if req.DefenderID == nil || *req.DefenderID == "" {
			return xerrors.FromCode(xerrors.CodeBattleMissingDefender)
		}
		if *req.DefenderID == req.AttackerID {
			return xerrors.FromCode(xerrors.CodeBattleSelfTarget)
		}
	case entity.BattleTypePVE:
		if req.OpponentLevel != nil && *req.OpponentLevel < 1 {
			return xerrors.NewValidationError("opponent_level", "NPC等级必须大于等于1")
		}
	default:
		return xerrors.NewValidationError("battle_type", "战斗类型必须为 pve 或 pvp")
	}
	return nil
}

// buildPlayerStats 汇总玩家基础属性与已装备物品的修正值
func (s *CombatService) buildPlayerStats(ctx context.Context, player *entity.Player) (combat.CombatantStats, error) {
	equipped, err := s.playerItemRepo.GetEquipped(ctx, player.ID)
	if err != nil {
		return combat.CombatantStats{}, xerrors.NewDatabaseError("get_equipped", "player_items", err)
	}

	var modifiers combat.StatModifiers
	if len(equipped) > 0 {
		itemIDs := make([]string, 0, len(equipped))
		for _, pi := range equipped {
			itemIDs = append(itemIDs, pi.ItemID)
		}
		items, err := s.itemRepo.GetByIDs(ctx, itemIDs)
		if err != nil {
			return combat.CombatantStats{}, xerrors.NewDatabaseError("get_items", "items", err)
		}
		for _, item := range items {
			m, err := combat.ParseStatModifiers(item.StatModifiers)
			if err != nil {
				s.logger.WarnContext(ctx, "物品属性修正值解析失败",
					log.String("item_id", item.ID))
				continue
			}
			modifiers.Add(m)
		}
	}

	return combat.NewPlayerStats(player, modifiers), nil
}

// buildRecord 构建战斗记录实体
func (s *CombatService) buildRecord(
	req *StartBattleRequest,
	attacker, defender *entity.Player,
	npcLevel int,
	outcome *combat.Outcome,
	expGained, goldGained int,
) (*entity.BattleRecord, error) {
	logJSON, err := json.Marshal(outcome.Log)
	if err != nil {
		return nil, xerrors.NewWithError(xerrors.CodeInternalError, "战斗日志序列化失败", err)
	}

	record := &entity.BattleRecord{
		ID:         uuid.New().String(),
		AttackerID: attacker.ID,
		BattleType: req.BattleType,
		Rounds:     outcome.Rounds,
		BattleLog:  logJSON,
		ExpGained:  expGained,
		GoldGained: goldGained,
	}

	if defender != nil {
		record.DefenderID = null.StringFrom(defender.ID)
	} else {
		record.NPCLevel = null.IntFrom(npcLevel)
	}

	// PVE 落败无胜者，winner_id 保持为空
	switch {
	case outcome.AttackerWon():
		record.WinnerID = null.StringFrom(attacker.ID)
	case defender != nil:
		record.WinnerID = null.StringFrom(defender.ID)
	}

	return record, nil
}

// GetBattle 查询单场战斗记录
func (s *CombatService) GetBattle(ctx context.Context, battleID string) (*entity.BattleRecord, error) {
	record, err := s.battleRepo.GetByID(ctx, battleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewBattleNotFoundError(battleID)
		}
		return nil, xerrors.NewDatabaseError("get_battle", "battle_records", err)
	}
	return record, nil
}

// GetBattleHistory 分页查询玩家战斗记录
func (s *CombatService) GetBattleHistory(ctx context.Context, params query.BattleHistoryParams) ([]*entity.BattleRecord, *query.PaginationResult, error) {
	records, total, err := s.battleRepo.GetByPlayer(ctx, params)
	if err != nil {
		return nil, nil, xerrors.NewDatabaseError("get_battle_history", "battle_records", err)
	}
	return records, query.NewPaginationResult(params.Pagination.Page, params.Pagination.PageSize, total), nil
}
