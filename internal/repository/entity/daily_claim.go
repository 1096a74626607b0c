package entity

import (
	"time"
)

// DailyClaim 数据库每日奖励领取记录实体
// claim_date 只保留日期部分（UTC），同一玩家同一天最多一行。
type DailyClaim struct {
	ID        string    `boil:"id" json:"id"`
	PlayerID  string    `boil:"player_id" json:"player_id"`
	ClaimDate time.Time `boil:"claim_date" json:"claim_date"`
	Streak    int       `boil:"streak" json:"streak"`

	GoldAwarded int `boil:"gold_awarded" json:"gold_awarded"`
	ExpAwarded  int `boil:"exp_awarded" json:"exp_awarded"`

	CreatedAt time.Time `boil:"created_at" json:"created_at"`
}

// TableName 返回表名
func (DailyClaim) TableName() string {
	return "daily_claims"
}
