package entity

import (
	"time"
)

// PlayerItem 数据库玩家背包条目实体
// 同一玩家同一物品只保留一行，数量累加。
type PlayerItem struct {
	ID       string `boil:"id" json:"id"`
	PlayerID string `boil:"player_id" json:"player_id"`
	ItemID   string `boil:"item_id" json:"item_id"`
	Quantity int    `boil:"quantity" json:"quantity"`
	Equipped bool   `boil:"equipped" json:"equipped"`

	CreatedAt time.Time `boil:"created_at" json:"created_at"`
	UpdatedAt time.Time `boil:"updated_at" json:"updated_at"`
}

// TableName 返回表名
func (PlayerItem) TableName() string {
	return "player_items"
}
