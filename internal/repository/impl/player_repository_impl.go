package impl

import (
	"context"
	"database/sql"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/friendsofgo/errors"

	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
)

type playerRepositoryImpl struct {
	db *sql.DB
}

// NewPlayerRepository 创建玩家仓储实现
func NewPlayerRepository(db *sql.DB) interfaces.PlayerRepository {
	return &playerRepositoryImpl{db: db}
}

func (r *playerRepositoryImpl) Create(ctx context.Context, execer boil.ContextExecutor, player *entity.Player) error {
	now := time.Now()
	player.CreatedAt = now
	player.UpdatedAt = now

	_, err := execer.ExecContext(ctx, `
		INSERT INTO players (
			id, name, level, experience, stat_points,
			health, max_health, mana, max_mana, gold,
			strength, defense, agility, intelligence,
			score, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		player.ID, player.Name, player.Level, player.Experience, player.StatPoints,
		player.Health, player.MaxHealth, player.Mana, player.MaxMana, player.Gold,
		player.Strength, player.Defense, player.Agility, player.Intelligence,
		player.Score, player.CreatedAt, player.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "创建玩家失败")
	}
	return nil
}

func (r *playerRepositoryImpl) GetByID(ctx context.Context, playerID string) (*entity.Player, error) {
	var player entity.Player
	err := queries.Raw(
		`SELECT `+playerColumns+` FROM players WHERE id = $1 AND deleted_at IS NULL`,
		playerID,
	).Bind(ctx, r.db, &player)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errors.Wrap(err, "查询玩家失败")
	}
	return &player, nil
}

func (r *playerRepositoryImpl) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, playerID string) (*entity.Player, error) {
	var player entity.Player
	err := queries.Raw(
		`SELECT `+playerColumns+` FROM players WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		playerID,
	).Bind(ctx, tx, &player)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errors.Wrap(err, "查询玩家失败（带锁）")
	}
	return &player, nil
}

func (r *playerRepositoryImpl) GetByName(ctx context.Context, name string) (*entity.Player, error) {
	var player entity.Player
	err := queries.Raw(
		`SELECT `+playerColumns+` FROM players WHERE name = $1 AND deleted_at IS NULL`,
		name,
	).Bind(ctx, r.db, &player)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errors.Wrap(err, "按名称查询玩家失败")
	}
	return &player, nil
}

func (r *playerRepositoryImpl) Update(ctx context.Context, execer boil.ContextExecutor, player *entity.Player) error {
	player.UpdatedAt = time.Now()

	_, err := execer.ExecContext(ctx, `
		UPDATE players SET
			name = $2, level = $3, experience = $4, stat_points = $5,
			health = $6, max_health = $7, mana = $8, max_mana = $9, gold = $10,
			strength = $11, defense = $12, agility = $13, intelligence = $14,
			score = $15, rank = $16, last_rank_update = $17, updated_at = $18
		WHERE id = $1 AND deleted_at IS NULL`,
		player.ID, player.Name, player.Level, player.Experience, player.StatPoints,
		player.Health, player.MaxHealth, player.Mana, player.MaxMana, player.Gold,
		player.Strength, player.Defense, player.Agility, player.Intelligence,
		player.Score, player.Rank, player.LastRankUpdate, player.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "更新玩家失败")
	}
	return nil
}

func (r *playerRepositoryImpl) Delete(ctx context.Context, playerID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE players SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL`,
		playerID, nullTimeNow(),
	)
	if err != nil {
		return errors.Wrap(err, "软删除玩家失败")
	}
	return nil
}

func (r *playerRepositoryImpl) GetAllActive(ctx context.Context) ([]*entity.Player, error) {
	var players []*entity.Player
	err := queries.Raw(
		`SELECT `+playerColumns+` FROM players WHERE deleted_at IS NULL ORDER BY id ASC`,
	).Bind(ctx, r.db, &players)
	if err != nil {
		return nil, errors.Wrap(err, "查询全部玩家失败")
	}
	return players, nil
}

func (r *playerRepositoryImpl) GetTopRanked(ctx context.Context, limit int) ([]*entity.Player, error) {
	var players []*entity.Player
	err := queries.Raw(
		`SELECT `+playerColumns+` FROM players
		WHERE deleted_at IS NULL AND rank IS NOT NULL
		ORDER BY rank ASC, id ASC
		LIMIT $1`,
		limit,
	).Bind(ctx, r.db, &players)
	if err != nil {
		return nil, errors.Wrap(err, "查询排行榜失败")
	}
	return players, nil
}

func (r *playerRepositoryImpl) UpdateScore(ctx context.Context, execer boil.ContextExecutor, playerID string, score int) error {
	_, err := execer.ExecContext(ctx, `
		UPDATE players SET score = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL`,
		playerID, score, time.Now(),
	)
	if err != nil {
		return errors.Wrap(err, "写入玩家积分失败")
	}
	return nil
}

func (r *playerRepositoryImpl) UpdateRanks(ctx context.Context, execer boil.ContextExecutor, updates []interfaces.RankUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	now := time.Now()
	for _, u := range updates {
		_, err := execer.ExecContext(ctx, `
			UPDATE players SET rank = $2, score = $3, last_rank_update = $4, updated_at = $4
			WHERE id = $1 AND deleted_at IS NULL`,
			u.PlayerID, u.Rank, u.Score, now,
		)
		if err != nil {
			return errors.Wrap(err, "写入玩家排名失败")
		}
	}
	return nil
}

func (r *playerRepositoryImpl) CheckExistsByName(ctx context.Context, name string) (bool, error) {
	var result struct {
		Count int64 `boil:"count"`
	}
	err := queries.Raw(
		`SELECT COUNT(*) AS count FROM players WHERE name = $1 AND deleted_at IS NULL`,
		name,
	).Bind(ctx, r.db, &result)
	if err != nil {
		return false, errors.Wrap(err, "检查玩家名称失败")
	}
	return result.Count > 0, nil
}
