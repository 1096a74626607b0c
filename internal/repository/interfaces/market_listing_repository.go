package interfaces

import (
	"context"
	"database/sql"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"

	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/query"
)

// MarketListingRepository 市场挂单仓储接口
type MarketListingRepository interface {
	// Create 创建挂单
	Create(ctx context.Context, execer boil.ContextExecutor, listing *entity.MarketListing) error

	// GetByID 根据ID获取挂单
	GetByID(ctx context.Context, listingID string) (*entity.MarketListing, error)

	// GetByIDForUpdate 根据ID获取挂单（带行锁）
	GetByIDForUpdate(ctx context.Context, tx *sql.Tx, listingID string) (*entity.MarketListing, error)

	// Search 分页查询挂单
	Search(ctx context.Context, params query.MarketListingParams) ([]*entity.MarketListing, int64, error)

	// Update 更新挂单
	Update(ctx context.Context, execer boil.ContextExecutor, listing *entity.MarketListing) error

	// GetExpired 查询已过期但仍处于 active 状态的挂单
	GetExpired(ctx context.Context, before time.Time, limit int) ([]*entity.MarketListing, error)
}
