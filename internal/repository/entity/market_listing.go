package entity

import (
	"time"

	"github.com/aarondl/null/v8"
)

// 挂单状态
const (
	ListingStatusActive    = "active"
	ListingStatusSold      = "sold"
	ListingStatusCancelled = "cancelled"
	ListingStatusExpired   = "expired"
)

// MarketListing 数据库市场挂单实体
// 挂单创建时物品从卖家背包转入托管，成交、取消或过期时再转出。
type MarketListing struct {
	ID       string `boil:"id" json:"id"`
	SellerID string `boil:"seller_id" json:"seller_id"`
	ItemID   string `boil:"item_id" json:"item_id"`
	Quantity int    `boil:"quantity" json:"quantity"`
	Price    int    `boil:"price" json:"price"`
	Status   string `boil:"status" json:"status"`

	BuyerID null.String `boil:"buyer_id" json:"buyer_id,omitempty"`
	SoldAt  null.Time   `boil:"sold_at" json:"sold_at,omitempty"`

	ExpiresAt time.Time `boil:"expires_at" json:"expires_at"`
	CreatedAt time.Time `boil:"created_at" json:"created_at"`
	UpdatedAt time.Time `boil:"updated_at" json:"updated_at"`
}

// TableName 返回表名
func (MarketListing) TableName() string {
	return "market_listings"
}

// IsActive 检查挂单是否仍可成交
func (l *MarketListing) IsActive() bool {
	return l.Status == ListingStatusActive && time.Now().Before(l.ExpiresAt)
}
