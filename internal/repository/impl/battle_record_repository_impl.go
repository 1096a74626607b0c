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
	"emberfall-server/internal/repository/query"
)

const battleRecordColumns = `id, attacker_id, defender_id, npc_level, battle_type,
	winner_id, rounds, battle_log, exp_gained, gold_gained, created_at`

type battleRecordRepositoryImpl struct {
	db *sql.DB
}

// NewBattleRecordRepository 创建战斗记录仓储实现
func NewBattleRecordRepository(db *sql.DB) interfaces.BattleRecordRepository {
	return &battleRecordRepositoryImpl{db: db}
}

func (r *battleRecordRepositoryImpl) Create(ctx context.Context, execer boil.ContextExecutor, record *entity.BattleRecord) error {
	record.CreatedAt = time.Now()

	_, err := execer.ExecContext(ctx, `
		INSERT INTO battle_records (
			id, attacker_id, defender_id, npc_level, battle_type,
			winner_id, rounds, battle_log, exp_gained, gold_gained, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		record.ID, record.AttackerID, record.DefenderID, record.NPCLevel, record.BattleType,
		record.WinnerID, record.Rounds, record.BattleLog, record.ExpGained, record.GoldGained,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建战斗记录失败: %w", err)
	}
	return nil
}

func (r *battleRecordRepositoryImpl) GetByID(ctx context.Context, battleID string) (*entity.BattleRecord, error) {
	var record entity.BattleRecord
	err := queries.Raw(
		`SELECT `+battleRecordColumns+` FROM battle_records WHERE id = $1`,
		battleID,
	).Bind(ctx, r.db, &record)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("查询战斗记录失败: %w", err)
	}
	return &record, nil
}

func (r *battleRecordRepositoryImpl) GetByPlayer(ctx context.Context, params query.BattleHistoryParams) ([]*entity.BattleRecord, int64, error) {
	params.Pagination.Validate()

	where := `(attacker_id = $1 OR defender_id = $1)`
	args := []interface{}{params.PlayerID}
	if params.BattleType != nil {
		where += fmt.Sprintf(` AND battle_type = $%d`, len(args)+1)
		args = append(args, *params.BattleType)
	}

	var result struct {
		Count int64 `boil:"count"`
	}
	err := queries.Raw(
		`SELECT COUNT(*) AS count FROM battle_records WHERE `+where,
		args...,
	).Bind(ctx, r.db, &result)
	if err != nil {
		return nil, 0, fmt.Errorf("统计战斗记录失败: %w", err)
	}

	listSQL := fmt.Sprintf(
		`SELECT %s FROM battle_records WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		battleRecordColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, params.Pagination.GetLimit(), params.Pagination.GetOffset())

	var records []*entity.BattleRecord
	if err := queries.Raw(listSQL, args...).Bind(ctx, r.db, &records); err != nil {
		return nil, 0, fmt.Errorf("查询战斗记录列表失败: %w", err)
	}

	return records, result.Count, nil
}

func (r *battleRecordRepositoryImpl) CountByPlayer(ctx context.Context, playerID string) (int64, error) {
	var result struct {
		Count int64 `boil:"count"`
	}
	err := queries.Raw(
		`SELECT COUNT(*) AS count FROM battle_records WHERE attacker_id = $1 OR defender_id = $1`,
		playerID,
	).Bind(ctx, r.db, &result)
	if err != nil {
		return 0, fmt.Errorf("统计战斗场次失败: %w", err)
	}
	return result.Count, nil
}
