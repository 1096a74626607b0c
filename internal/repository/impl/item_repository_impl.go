package impl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aarondl/sqlboiler/v4/queries"

	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
)

const itemColumns = `id, name, description, item_type, quality, price, stat_modifiers, created_at, updated_at`

type itemRepositoryImpl struct {
	db *sql.DB
}

// NewItemRepository 创建物品模板仓储实现
func NewItemRepository(db *sql.DB) interfaces.ItemRepository {
	return &itemRepositoryImpl{db: db}
}

func (r *itemRepositoryImpl) GetByID(ctx context.Context, itemID string) (*entity.Item, error) {
	var item entity.Item
	err := queries.Raw(
		`SELECT `+itemColumns+` FROM items WHERE id = $1`,
		itemID,
	).Bind(ctx, r.db, &item)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("查询物品失败: %w", err)
	}
	return &item, nil
}

func (r *itemRepositoryImpl) GetByIDs(ctx context.Context, itemIDs []string) ([]*entity.Item, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(itemIDs))
	args := make([]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	var items []*entity.Item
	err := queries.Raw(
		fmt.Sprintf(`SELECT %s FROM items WHERE id IN (%s)`, itemColumns, strings.Join(placeholders, ", ")),
		args...,
	).Bind(ctx, r.db, &items)
	if err != nil {
		return nil, fmt.Errorf("批量查询物品失败: %w", err)
	}
	return items, nil
}

func (r *itemRepositoryImpl) GetAll(ctx context.Context) ([]*entity.Item, error) {
	var items []*entity.Item
	err := queries.Raw(
		`SELECT ` + itemColumns + ` FROM items ORDER BY item_type, name`,
	).Bind(ctx, r.db, &items)
	if err != nil {
		return nil, fmt.Errorf("查询物品列表失败: %w", err)
	}
	return items, nil
}
