package interfaces

import (
	"context"
	"database/sql"

	"github.com/aarondl/sqlboiler/v4/boil"

	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/query"
)

// PlayerItemRepository 玩家背包仓储接口
type PlayerItemRepository interface {
	// GetByPlayer 查询玩家背包
	GetByPlayer(ctx context.Context, params query.InventoryParams) ([]*entity.PlayerItem, error)

	// GetByPlayerAndItem 查询玩家某个物品的背包条目，不存在时返回 sql.ErrNoRows
	GetByPlayerAndItem(ctx context.Context, playerID, itemID string) (*entity.PlayerItem, error)

	// GetByPlayerAndItemForUpdate 查询玩家某个物品的背包条目（带行锁）
	GetByPlayerAndItemForUpdate(ctx context.Context, tx *sql.Tx, playerID, itemID string) (*entity.PlayerItem, error)

	// AddQuantity 为玩家增加物品数量，条目不存在时创建
	AddQuantity(ctx context.Context, execer boil.ContextExecutor, playerID, itemID string, delta int) error

	// RemoveQuantity 扣减物品数量，数量归零时删除条目；数量不足返回错误
	RemoveQuantity(ctx context.Context, execer boil.ContextExecutor, playerID, itemID string, delta int) error

	// SetEquipped 更新装备状态
	SetEquipped(ctx context.Context, execer boil.ContextExecutor, playerID, itemID string, equipped bool) error

	// GetEquipped 查询玩家已装备的物品
	GetEquipped(ctx context.Context, playerID string) ([]*entity.PlayerItem, error)
}
