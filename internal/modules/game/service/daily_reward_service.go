package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"emberfall-server/internal/modules/game/combat"
	"emberfall-server/internal/pkg/config"
	"emberfall-server/internal/pkg/log"
	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
)

// DailyRewardService 每日奖励服务。
// 连续领取天数决定奖励倍率，断签从 1 重新累计，
// 连签奖励在配置的天数上限处封顶。
type DailyRewardService struct {
	db             *sql.DB
	playerRepo     interfaces.PlayerRepository
	dailyClaimRepo interfaces.DailyClaimRepository
	cfg            *config.GameConfig
	metrics        *metrics.BusinessMetrics
	logger         log.Logger

	// now 可注入以便测试固定日期
	now func() time.Time
}

// NewDailyRewardService 创建每日奖励服务
func NewDailyRewardService(
	db *sql.DB,
	playerRepo interfaces.PlayerRepository,
	dailyClaimRepo interfaces.DailyClaimRepository,
	cfg *config.GameConfig,
	bm *metrics.BusinessMetrics,
) *DailyRewardService {
	return &DailyRewardService{
		db:             db,
		playerRepo:     playerRepo,
		dailyClaimRepo: dailyClaimRepo,
		cfg:            cfg,
		metrics:        bm,
		logger:         log.GetLogger(),
		now:            time.Now,
	}
}

// DailyRewardResult 领取结果
type DailyRewardResult struct {
	Streak      int  `json:"streak"`
	GoldAwarded int  `json:"gold_awarded"`
	ExpAwarded  int  `json:"exp_awarded"`
	LeveledUp   bool `json:"leveled_up"`
	NewLevel    int  `json:"new_level"`
}

// Claim 领取每日奖励。同一天重复领取返回业务错误，
// 奖励发放与领取记录写入在同一事务内提交。
func (s *DailyRewardService) Claim(ctx context.Context, playerID string) (*DailyRewardResult, []combat.DomainEvent, error) {
	today := truncateToDay(s.now().UTC())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, xerrors.NewPersistenceError("begin_claim_tx", err)
	}
	defer tx.Rollback()

	player, err := s.playerRepo.GetByIDForUpdate(ctx, tx, playerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, xerrors.NewPlayerNotFoundError(playerID)
		}
		return nil, nil, xerrors.NewDatabaseError("get_player", "players", err)
	}

	// 今日是否已领取按日期精确查询，不依赖最近一条记录的日期推断
	if _, err := s.dailyClaimRepo.GetByPlayerAndDate(ctx, playerID, today); err == nil {
		return nil, nil, xerrors.FromCode(xerrors.CodeDailyAlreadyClaimed).
			WithPlayer(playerID)
	} else if err != sql.ErrNoRows {
		return nil, nil, xerrors.NewDatabaseError("get_claim_by_date", "daily_claims", err)
	}

	streak := 1
	latest, err := s.dailyClaimRepo.GetLatest(ctx, playerID)
	switch {
	case err == sql.ErrNoRows:
		// 首次领取
	case err != nil:
		return nil, nil, xerrors.NewDatabaseError("get_latest_claim", "daily_claims", err)
	default:
		if truncateToDay(latest.ClaimDate.UTC()).Equal(today.AddDate(0, 0, -1)) {
			streak = latest.Streak + 1
		}
	}

	gold, exp := s.rewardFor(streak)

	oldLevel := player.Level
	combat.ApplyExperience(player, exp)
	player.Gold += gold

	if err := s.playerRepo.Update(ctx, tx, player); err != nil {
		return nil, nil, xerrors.NewPersistenceError("update_player", err)
	}

	claim := &entity.DailyClaim{
		ID:          uuid.New().String(),
		PlayerID:    playerID,
		ClaimDate:   today,
		Streak:      streak,
		GoldAwarded: gold,
		ExpAwarded:  exp,
	}
	if err := s.dailyClaimRepo.Create(ctx, tx, claim); err != nil {
		return nil, nil, xerrors.NewPersistenceError("create_claim", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, xerrors.NewPersistenceError("commit_claim_tx", err)
	}

	var events []combat.DomainEvent
	if player.Level > oldLevel {
		events = append(events, combat.LevelUpEvent{
			PlayerID: playerID,
			OldLevel: oldLevel,
			NewLevel: player.Level,
		})
	}

	s.metrics.RecordDailyClaim(serviceName)
	s.logger.InfoContext(ctx, "每日奖励领取成功",
		log.String("player_id", playerID),
		log.Int("streak", streak),
		log.Int("gold", gold),
		log.Int("exp", exp),
	)

	return &DailyRewardResult{
		Streak:      streak,
		GoldAwarded: gold,
		ExpAwarded:  exp,
		LeveledUp:   player.Level > oldLevel,
		NewLevel:    player.Level,
	}, events, nil
}

// DailyRewardStatus 领取状态
type DailyRewardStatus struct {
	Streak        int        `json:"streak"`
	LastClaimDate *time.Time `json:"last_claim_date,omitempty"`
	Claimable     bool       `json:"claimable"`
	NextGold      int        `json:"next_gold"`
	NextExp       int        `json:"next_exp"`
}

// Status 查询当前连签状态与今日是否可领取
func (s *DailyRewardService) Status(ctx context.Context, playerID string) (*DailyRewardStatus, error) {
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewPlayerNotFoundError(playerID)
		}
		return nil, xerrors.NewDatabaseError("get_player", "players", err)
	}

	today := truncateToDay(s.now().UTC())

	latest, err := s.dailyClaimRepo.GetLatest(ctx, playerID)
	if err == sql.ErrNoRows {
		nextGold, nextExp := s.rewardFor(1)
		return &DailyRewardStatus{
			Streak:    0,
			Claimable: true,
			NextGold:  nextGold,
			NextExp:   nextExp,
		}, nil
	}
	if err != nil {
		return nil, xerrors.NewDatabaseError("get_latest_claim", "daily_claims", err)
	}

	latestDate := truncateToDay(latest.ClaimDate.UTC())
	status := &DailyRewardStatus{
		Streak:        latest.Streak,
		LastClaimDate: &latestDate,
		Claimable:     !latestDate.Equal(today),
	}

	// 预告下一次领取的奖励档位
	nextStreak := 1
	if latestDate.Equal(today) || latestDate.Equal(today.AddDate(0, 0, -1)) {
		nextStreak = latest.Streak + 1
	}
	status.NextGold, status.NextExp = s.rewardFor(nextStreak)
	return status, nil
}

// rewardFor 按连签天数计算奖励，超过上限按上限档发放
func (s *DailyRewardService) rewardFor(streak int) (gold, exp int) {
	effective := streak
	if effective > s.cfg.DailyStreakCap {
		effective = s.cfg.DailyStreakCap
	}
	gold = s.cfg.DailyBaseGold + s.cfg.DailyStreakGoldStep*(effective-1)
	exp = s.cfg.DailyExperiencePer * effective
	return gold, exp
}

// truncateToDay 去掉时间部分只保留 UTC 日期
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
