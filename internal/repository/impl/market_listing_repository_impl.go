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

const marketListingColumns = `id, seller_id, item_id, quantity, price, status,
	buyer_id, sold_at, expires_at, created_at, updated_at`

type marketListingRepositoryImpl struct {
	db *sql.DB
}

// NewMarketListingRepository 创建市场挂单仓储实现
func NewMarketListingRepository(db *sql.DB) interfaces.MarketListingRepository {
	return &marketListingRepositoryImpl{db: db}
}

func (r *marketListingRepositoryImpl) Create(ctx context.Context, execer boil.ContextExecutor, listing *entity.MarketListing) error {
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	_, err := execer.ExecContext(ctx, `
		INSERT INTO market_listings (
			id, seller_id, item_id, quantity, price, status,
			buyer_id, sold_at, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		listing.ID, listing.SellerID, listing.ItemID, listing.Quantity, listing.Price, listing.Status,
		listing.BuyerID, listing.SoldAt, listing.ExpiresAt, listing.CreatedAt, listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建挂单失败: %w", err)
	}
	return nil
}

func (r *marketListingRepositoryImpl) GetByID(ctx context.Context, listingID string) (*entity.MarketListing, error) {
	var listing entity.MarketListing
	err := queries.Raw(
		`SELECT `+marketListingColumns+` FROM market_listings WHERE id = $1`,
		listingID,
	).Bind(ctx, r.db, &listing)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("查询挂单失败: %w", err)
	}
	return &listing, nil
}

func (r *marketListingRepositoryImpl) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, listingID string) (*entity.MarketListing, error) {
	var listing entity.MarketListing
	err := queries.Raw(
		`SELECT `+marketListingColumns+` FROM market_listings WHERE id = $1 FOR UPDATE`,
		listingID,
	).Bind(ctx, tx, &listing)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("查询挂单失败（带锁）: %w", err)
	}
	return &listing, nil
}

func (r *marketListingRepositoryImpl) Search(ctx context.Context, params query.MarketListingParams) ([]*entity.MarketListing, int64, error) {
	params.Pagination.Validate()

	where := `1 = 1`
	var args []interface{}
	addCond := func(cond string, value interface{}) {
		args = append(args, value)
		where += fmt.Sprintf(` AND %s $%d`, cond, len(args))
	}

	if params.ItemID != nil {
		addCond("item_id =", *params.ItemID)
	}
	if params.SellerID != nil {
		addCond("seller_id =", *params.SellerID)
	}
	if params.Status != nil {
		addCond("status =", *params.Status)
	}
	if params.MaxPrice != nil {
		addCond("price <=", *params.MaxPrice)
	}

	var result struct {
		Count int64 `boil:"count"`
	}
	err := queries.Raw(
		`SELECT COUNT(*) AS count FROM market_listings WHERE `+where,
		args...,
	).Bind(ctx, r.db, &result)
	if err != nil {
		return nil, 0, fmt.Errorf("统计挂单失败: %w", err)
	}

	listSQL := fmt.Sprintf(
		`SELECT %s FROM market_listings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		marketListingColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, params.Pagination.GetLimit(), params.Pagination.GetOffset())

	var listings []*entity.MarketListing
	if err := queries.Raw(listSQL, args...).Bind(ctx, r.db, &listings); err != nil {
		return nil, 0, fmt.Errorf("查询挂单列表失败: %w", err)
	}

	return listings, result.Count, nil
}

func (r *marketListingRepositoryImpl) Update(ctx context.Context, execer boil.ContextExecutor, listing *entity.MarketListing) error {
	listing.UpdatedAt = time.Now()

	_, err := execer.ExecContext(ctx, `
		UPDATE market_listings SET
			status = $2, buyer_id = $3, sold_at = $4, updated_at = $5
		WHERE id = $1`,
		listing.ID, listing.Status, listing.BuyerID, listing.SoldAt, listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新挂单失败: %w", err)
	}
	return nil
}

func (r *marketListingRepositoryImpl) GetExpired(ctx context.Context, before time.Time, limit int) ([]*entity.MarketListing, error) {
	var listings []*entity.MarketListing
	err := queries.Raw(
		`SELECT `+marketListingColumns+` FROM market_listings
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at ASC
		LIMIT $3`,
		entity.ListingStatusActive, before, limit,
	).Bind(ctx, r.db, &listings)
	if err != nil {
		return nil, fmt.Errorf("查询过期挂单失败: %w", err)
	}
	return listings, nil
}
