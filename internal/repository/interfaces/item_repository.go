package interfaces

import (
	"context"

	"emberfall-server/internal/repository/entity"
)

// ItemRepository 物品模板仓储接口
type ItemRepository interface {
	// GetByID 根据ID获取物品模板
	GetByID(ctx context.Context, itemID string) (*entity.Item, error)

	// GetByIDs 批量获取物品模板
	GetByIDs(ctx context.Context, itemIDs []string) ([]*entity.Item, error)

	// GetAll 获取全部物品模板
	GetAll(ctx context.Context) ([]*entity.Item, error)
}
