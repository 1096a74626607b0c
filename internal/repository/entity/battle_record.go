package entity

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/types"
)

// 战斗类型
const (
	BattleTypePVE = "pve"
	BattleTypePVP = "pvp"
)

// BattleRecord 数据库战斗记录实体
type BattleRecord struct {
	ID         string      `boil:"id" json:"id"`
	AttackerID string      `boil:"attacker_id" json:"attacker_id"`
	DefenderID null.String `boil:"defender_id" json:"defender_id,omitempty"`
	NPCLevel   null.Int    `boil:"npc_level" json:"npc_level,omitempty"`
	BattleType string      `boil:"battle_type" json:"battle_type"`

	// winner_id 为空表示进攻方落败的 PVE 战斗（无胜者）
	WinnerID null.String `boil:"winner_id" json:"winner_id,omitempty"`

	Rounds    int        `boil:"rounds" json:"rounds"`
	BattleLog types.JSON `boil:"battle_log" json:"battle_log"`

	// 发放给胜者的奖励
	ExpGained  int `boil:"exp_gained" json:"exp_gained"`
	GoldGained int `boil:"gold_gained" json:"gold_gained"`

	CreatedAt time.Time `boil:"created_at" json:"created_at"`
}

// TableName 返回表名
func (BattleRecord) TableName() string {
	return "battle_records"
}

// IsPVP 检查是否为玩家对战
func (b *BattleRecord) IsPVP() bool {
	return b.BattleType == BattleTypePVP
}
