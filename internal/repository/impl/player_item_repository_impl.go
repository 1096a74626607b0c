package impl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/google/uuid"

	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
	"emberfall-server/internal/repository/query"
)

const playerItemColumns = `id, player_id, item_id, quantity, equipped, created_at, updated_at`

type playerItemRepositoryImpl struct {
	db *sql.DB
}

// NewPlayerItemRepository 创建玩家背包仓储实现
func NewPlayerItemRepository(db *sql.DB) interfaces.PlayerItemRepository {
	return &playerItemRepositoryImpl{db: db}
}

func (r *playerItemRepositoryImpl) GetByPlayer(ctx context.Context, params query.InventoryParams) ([]*entity.PlayerItem, error) {
	sqlStr := `SELECT ` + playerItemColumnsPrefixed("pi") + ` FROM player_items pi`
	args := []interface{}{params.PlayerID}

	if params.ItemType != nil {
		sqlStr += ` INNER JOIN items i ON pi.item_id = i.id`
	}
	sqlStr += ` WHERE pi.player_id = $1`
	if params.ItemType != nil {
		sqlStr += ` AND i.item_type = $2`
		args = append(args, *params.ItemType)
	}
	if params.EquippedOnly {
		sqlStr += ` AND pi.equipped = TRUE`
	}
	sqlStr += ` ORDER BY pi.created_at ASC`

	var items []*entity.PlayerItem
	if err := queries.Raw(sqlStr, args...).Bind(ctx, r.db, &items); err != nil {
		return nil, fmt.Errorf("查询玩家背包失败: %w", err)
	}
	return items, nil
}

func (r *playerItemRepositoryImpl) GetByPlayerAndItem(ctx context.Context, playerID, itemID string) (*entity.PlayerItem, error) {
	var item entity.PlayerItem
	err := queries.Raw(
		`SELECT `+playerItemColumns+` FROM player_items WHERE player_id = $1 AND item_id = $2`,
		playerID, itemID,
	).Bind(ctx, r.db, &item)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("查询背包条目失败: %w", err)
	}
	return &item, nil
}

func (r *playerItemRepositoryImpl) GetByPlayerAndItemForUpdate(ctx context.Context, tx *sql.Tx, playerID, itemID string) (*entity.PlayerItem, error) {
	var item entity.PlayerItem
	err := queries.Raw(
		`SELECT `+playerItemColumns+` FROM player_items WHERE player_id = $1 AND item_id = $2 FOR UPDATE`,
		playerID, itemID,
	).Bind(ctx, tx, &item)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("查询背包条目失败（带锁）: %w", err)
	}
	return &item, nil
}

func (r *playerItemRepositoryImpl) AddQuantity(ctx context.Context, execer boil.ContextExecutor, playerID, itemID string, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("增加的物品数量必须为正: %d", delta)
	}

	// upsert：条目存在则累加数量，不存在则插入
	_, err := execer.ExecContext(ctx, `
		INSERT INTO player_items (id, player_id, item_id, quantity, equipped, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		ON CONFLICT (player_id, item_id)
		DO UPDATE SET quantity = player_items.quantity + $4, updated_at = NOW()`,
		uuid.New().String(), playerID, itemID, delta,
	)
	if err != nil {
		return fmt.Errorf("增加背包物品失败: %w", err)
	}
	return nil
}

func (r *playerItemRepositoryImpl) RemoveQuantity(ctx context.Context, execer boil.ContextExecutor, playerID, itemID string, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("扣减的物品数量必须为正: %d", delta)
	}

	result, err := execer.ExecContext(ctx, `
		UPDATE player_items SET quantity = quantity - $3, updated_at = NOW()
		WHERE player_id = $1 AND item_id = $2 AND quantity >= $3`,
		playerID, itemID, delta,
	)
	if err != nil {
		return fmt.Errorf("扣减背包物品失败: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("扣减背包物品失败: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	// 数量归零的条目直接清理
	_, err = execer.ExecContext(ctx, `
		DELETE FROM player_items WHERE player_id = $1 AND item_id = $2 AND quantity <= 0`,
		playerID, itemID,
	)
	if err != nil {
		return fmt.Errorf("清理空背包条目失败: %w", err)
	}
	return nil
}

func (r *playerItemRepositoryImpl) SetEquipped(ctx context.Context, execer boil.ContextExecutor, playerID, itemID string, equipped bool) error {
	result, err := execer.ExecContext(ctx, `
		UPDATE player_items SET equipped = $3, updated_at = NOW()
		WHERE player_id = $1 AND item_id = $2`,
		playerID, itemID, equipped,
	)
	if err != nil {
		return fmt.Errorf("更新装备状态失败: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新装备状态失败: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *playerItemRepositoryImpl) GetEquipped(ctx context.Context, playerID string) ([]*entity.PlayerItem, error) {
	var items []*entity.PlayerItem
	err := queries.Raw(
		`SELECT `+playerItemColumns+` FROM player_items WHERE player_id = $1 AND equipped = TRUE`,
		playerID,
	).Bind(ctx, r.db, &items)
	if err != nil {
		return nil, fmt.Errorf("查询已装备物品失败: %w", err)
	}
	return items, nil
}

// playerItemColumnsPrefixed 给列名加上表别名前缀
func playerItemColumnsPrefixed(alias string) string {
	return alias + ".id, " + alias + ".player_id, " + alias + ".item_id, " +
		alias + ".quantity, " + alias + ".equipped, " + alias + ".created_at, " + alias + ".updated_at"
}
