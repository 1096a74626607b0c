package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"emberfall-server/internal/pkg/config"
	"emberfall-server/internal/pkg/log"
	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/pkg/notify"
	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
	"emberfall-server/internal/repository/query"
)

// MarketService 市场服务。
// 挂单采用托管模式：上架即从卖家背包扣走物品，
// 成交发给买家，取消或过期退回卖家。
type MarketService struct {
	db             *sql.DB
	playerRepo     interfaces.PlayerRepository
	playerItemRepo interfaces.PlayerItemRepository
	listingRepo    interfaces.MarketListingRepository
	inventory      *InventoryService
	cfg            *config.GameConfig
	metrics        *metrics.BusinessMetrics
	logger         log.Logger
}

// NewMarketService 创建市场服务
func NewMarketService(
	db *sql.DB,
	playerRepo interfaces.PlayerRepository,
	playerItemRepo interfaces.PlayerItemRepository,
	listingRepo interfaces.MarketListingRepository,
	inventory *InventoryService,
	cfg *config.GameConfig,
	bm *metrics.BusinessMetrics,
) *MarketService {
	return &MarketService{
		db:             db,
		playerRepo:     playerRepo,
		playerItemRepo: playerItemRepo,
		listingRepo:    listingRepo,
		inventory:      inventory,
		cfg:            cfg,
		metrics:        bm,
		logger:         log.GetLogger(),
	}
}

// CreateListingRequest 上架请求
type CreateListingRequest struct {
	SellerID string `json:"seller_id" validate:"required,uuid4"`
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Price    int    `json:"price" validate:"required,min=1"`
}

// CreateListing 上架物品。物品即刻从卖家背包转入托管。
func (s *MarketService) CreateListing(ctx context.Context, req *CreateListingRequest) (*entity.MarketListing, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, xerrors.NewPersistenceError("begin_listing_tx", err)
	}
	defer tx.Rollback()

	owned, err := s.playerItemRepo.GetByPlayerAndItemForUpdate(ctx, tx, req.SellerID, req.ItemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.FromCode(xerrors.CodeInventoryInsufficient).
				WithMetadata("item_id", req.ItemID)
		}
		return nil, xerrors.NewDatabaseError("get_seller_item", "player_items", err)
	}
	if owned.Quantity < req.Quantity {
		return nil, xerrors.FromCode(xerrors.CodeInventoryInsufficient).
			WithMetadata("item_id", req.ItemID).
			WithMetadata("owned", owned.Quantity).
			WithMetadata("requested", req.Quantity)
	}

	if err := s.playerItemRepo.RemoveQuantity(ctx, tx, req.SellerID, req.ItemID, req.Quantity); err != nil {
		return nil, xerrors.NewPersistenceError("escrow_items", err)
	}

	listing := &entity.MarketListing{
		ID:        uuid.New().String(),
		SellerID:  req.SellerID,
		ItemID:    req.ItemID,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Status:    entity.ListingStatusActive,
		ExpiresAt: time.Now().Add(s.cfg.ListingDuration),
	}
	if err := s.listingRepo.Create(ctx, tx, listing); err != nil {
		return nil, xerrors.NewPersistenceError("create_listing", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, xerrors.NewPersistenceError("commit_listing_tx", err)
	}

	s.inventory.Invalidate(ctx, req.SellerID, req.ItemID)
	s.metrics.RecordMarketListing("created", serviceName)
	return listing, nil
}

// CancelListing 取消挂单，托管物品退回卖家背包
func (s *MarketService) CancelListing(ctx context.Context, playerID, listingID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.NewPersistenceError("begin_cancel_tx", err)
	}
	defer tx.Rollback()

	listing, err := s.listingRepo.GetByIDForUpdate(ctx, tx, listingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return xerrors.NewListingNotFoundError(listingID)
		}
		return xerrors.NewDatabaseError("get_listing", "market_listings", err)
	}
	if listing.SellerID != playerID {
		return xerrors.FromCode(xerrors.CodeListingNotOwner).
			WithMetadata("listing_id", listingID)
	}
	if listing.Status != entity.ListingStatusActive {
		return xerrors.FromCode(xerrors.CodeListingNotActive).
			WithMetadata("status", listing.Status)
	}

	if err := s.playerItemRepo.AddQuantity(ctx, tx, listing.SellerID, listing.ItemID, listing.Quantity); err != nil {
		return xerrors.NewPersistenceError("return_escrow", err)
	}

	listing.Status = entity.ListingStatusCancelled
	if err := s.listingRepo.Update(ctx, tx, listing); err != nil {
		return xerrors.NewPersistenceError("update_listing", err)
	}

	if err := tx.Commit(); err != nil {
		return xerrors.NewPersistenceError("commit_cancel_tx", err)
	}

	s.inventory.Invalidate(ctx, listing.SellerID, listing.ItemID)
	s.metrics.RecordMarketListing("cancelled", serviceName)
	return nil
}

// PurchaseListing 购买挂单。金币从买家转给卖家，
// 托管物品发给买家，整个交易在同一事务内提交。
func (s *MarketService) PurchaseListing(ctx context.Context, buyerID, listingID string) (*entity.MarketListing, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, xerrors.NewPersistenceError("begin_purchase_tx", err)
	}
	defer tx.Rollback()

	listing, err := s.listingRepo.GetByIDForUpdate(ctx, tx, listingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewListingNotFoundError(listingID)
		}
		return nil, xerrors.NewDatabaseError("get_listing", "market_listings", err)
	}
	if !listing.IsActive() {
		return nil, xerrors.FromCode(xerrors.CodeListingNotActive).
			WithMetadata("status", listing.Status)
	}
	if listing.SellerID == buyerID {
		return nil, xerrors.FromCode(xerrors.CodeListingSelfPurchase)
	}

	buyer, err := s.playerRepo.GetByIDForUpdate(ctx, tx, buyerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewPlayerNotFoundError(buyerID)
		}
		return nil, xerrors.NewDatabaseError("get_buyer", "players", err)
	}
	if buyer.Gold < listing.Price {
		return nil, xerrors.NewInsufficientGoldError(listing.Price, buyer.Gold)
	}

	seller, err := s.playerRepo.GetByIDForUpdate(ctx, tx, listing.SellerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewPlayerNotFoundError(listing.SellerID)
		}
		return nil, xerrors.NewDatabaseError("get_seller", "players", err)
	}

	buyer.Gold -= listing.Price
	seller.Gold += listing.Price

	if err := s.playerRepo.Update(ctx, tx, buyer); err != nil {
		return nil, xerrors.NewPersistenceError("update_buyer", err)
	}
	if err := s.playerRepo.Update(ctx, tx, seller); err != nil {
		return nil, xerrors.NewPersistenceError("update_seller", err)
	}
	if err := s.playerItemRepo.AddQuantity(ctx, tx, buyerID, listing.ItemID, listing.Quantity); err != nil {
		return nil, xerrors.NewPersistenceError("deliver_items", err)
	}

	listing.Status = entity.ListingStatusSold
	listing.BuyerID = null.StringFrom(buyerID)
	listing.SoldAt = null.TimeFromPtr(nowPtr())
	if err := s.listingRepo.Update(ctx, tx, listing); err != nil {
		return nil, xerrors.NewPersistenceError("update_listing", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, xerrors.NewPersistenceError("commit_purchase_tx", err)
	}

	s.inventory.Invalidate(ctx, buyerID, listing.ItemID)
	s.metrics.RecordMarketListing("sold", serviceName)

	notify.PublishEvent(ctx, notify.SubjectMarketTrade, map[string]interface{}{
		"listing_id": listing.ID,
		"seller_id":  listing.SellerID,
		"buyer_id":   buyerID,
		"item_id":    listing.ItemID,
		"quantity":   listing.Quantity,
		"price":      listing.Price,
	})

	return listing, nil
}

// SearchListings 查询市场挂单
func (s *MarketService) SearchListings(ctx context.Context, params query.MarketListingParams) ([]*entity.MarketListing, *query.PaginationResult, error) {
	listings, total, err := s.listingRepo.Search(ctx, params)
	if err != nil {
		return nil, nil, xerrors.NewDatabaseError("search_listings", "market_listings", err)
	}
	return listings, query.NewPaginationResult(params.Pagination.Page, params.Pagination.PageSize, total), nil
}

// ExpireListings 处理过期挂单，托管物品退回卖家。
// 由定时任务周期调用，单次最多处理 batchSize 条。
func (s *MarketService) ExpireListings(ctx context.Context) (int, error) {
	const batchSize = 100

	expired, err := s.listingRepo.GetExpired(ctx, time.Now(), batchSize)
	if err != nil {
		return 0, xerrors.NewDatabaseError("get_expired", "market_listings", err)
	}

	processed := 0
	for _, listing := range expired {
		if err := s.expireOne(ctx, listing.ID); err != nil {
			s.logger.ErrorContext(ctx, "过期挂单处理失败",
				log.String("listing_id", listing.ID),
				log.Any("error", err),
			)
			continue
		}
		processed++
	}
	return processed, nil
}

func (s *MarketService) expireOne(ctx context.Context, listingID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.NewPersistenceError("begin_expire_tx", err)
	}
	defer tx.Rollback()

	listing, err := s.listingRepo.GetByIDForUpdate(ctx, tx, listingID)
	if err != nil {
		return xerrors.NewDatabaseError("get_listing", "market_listings", err)
	}
	// 拿到锁后复核状态，避免与取消/购买并发
	if listing.Status != entity.ListingStatusActive {
		return nil
	}

	if err := s.playerItemRepo.AddQuantity(ctx, tx, listing.SellerID, listing.ItemID, listing.Quantity); err != nil {
		return xerrors.NewPersistenceError("return_escrow", err)
	}

	listing.Status = entity.ListingStatusExpired
	if err := s.listingRepo.Update(ctx, tx, listing); err != nil {
		return xerrors.NewPersistenceError("update_listing", err)
	}

	if err := tx.Commit(); err != nil {
		return xerrors.NewPersistenceError("commit_expire_tx", err)
	}

	s.inventory.Invalidate(ctx, listing.SellerID, listing.ItemID)
	s.metrics.RecordMarketListing("expired", serviceName)
	return nil
}

func nowPtr() *time.Time {
	now := time.Now()
	return &now
}
