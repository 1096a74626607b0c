package impl

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"

	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
)

const dailyClaimColumns = `id, player_id, claim_date, streak, gold_awarded, exp_awarded, created_at`

type dailyClaimRepositoryImpl struct {
	db *sql.DB
}

// NewDailyClaimRepository 创建每日奖励仓储实现
func NewDailyClaimRepository(db *sql.DB) interfaces.DailyClaimRepository {
	return &dailyClaimRepositoryImpl{db: db}
}

func (r *dailyClaimRepositoryImpl) Create(ctx context.Context, execer boil.ContextExecutor, claim *entity.DailyClaim) error {
	claim.CreatedAt = time.Now()

	// (player_id, claim_date) 唯一约束兜底并发重复领取
	_, err := execer.ExecContext(ctx, `
		INSERT INTO daily_claims (id, player_id, claim_date, streak, gold_awarded, exp_awarded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		claim.ID, claim.PlayerID, claim.ClaimDate, claim.Streak,
		claim.GoldAwarded, claim.ExpAwarded, claim.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建领取记录失败: %w", err)
	}
	return nil
}

func (r *dailyClaimRepositoryImpl) GetByPlayerAndDate(ctx context.Context, playerID string, date time.Time) (*entity.DailyClaim, error) {
	var claim entity.DailyClaim
	err := queries.Raw(
		`SELECT `+dailyClaimColumns+` FROM daily_claims WHERE player_id = $1 AND claim_date = $2`,
		playerID, date,
	).Bind(ctx, r.db, &claim)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("查询领取记录失败: %w", err)
	}
	return &claim, nil
}

func (r *dailyClaimRepositoryImpl) GetLatest(ctx context.Context, playerID string) (*entity.DailyClaim, error) {
	var claim entity.DailyClaim
	err := queries.Raw(
		`SELECT `+dailyClaimColumns+` FROM daily_claims
		WHERE player_id = $1
		ORDER BY claim_date DESC
		LIMIT 1`,
		playerID,
	).Bind(ctx, r.db, &claim)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("查询最近领取记录失败: %w", err)
	}
	return &claim, nil
}
