package query

// BattleHistoryParams 战斗记录查询参数
type BattleHistoryParams struct {
	PlayerID   string
	BattleType *string // 为空表示不筛选
	Pagination Pagination
}

// MarketListingParams 市场挂单查询参数
type MarketListingParams struct {
	ItemID     *string
	SellerID   *string
	Status     *string
	MaxPrice   *int
	Pagination Pagination
}

// InventoryParams 背包查询参数
type InventoryParams struct {
	PlayerID     string
	ItemType     *string
	EquippedOnly bool
}
