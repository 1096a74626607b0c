package entity

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Player 数据库玩家实体
type Player struct {
	ID   string `boil:"id" json:"id"`
	Name string `boil:"name" json:"name"`

	// 成长
	Level      int `boil:"level" json:"level"`
	Experience int `boil:"experience" json:"experience"`
	StatPoints int `boil:"stat_points" json:"stat_points"`

	// 资源
	Health    int `boil:"health" json:"health"`
	MaxHealth int `boil:"max_health" json:"max_health"`
	Mana      int `boil:"mana" json:"mana"`
	MaxMana   int `boil:"max_mana" json:"max_mana"`
	Gold      int `boil:"gold" json:"gold"`

	// 战斗属性
	Strength     int `boil:"strength" json:"strength"`
	Defense      int `boil:"defense" json:"defense"`
	Agility      int `boil:"agility" json:"agility"`
	Intelligence int `boil:"intelligence" json:"intelligence"`

	// 排名：rank 为空表示尚未参与排名计算
	Score          int       `boil:"score" json:"score"`
	Rank           null.Int  `boil:"rank" json:"rank,omitempty"`
	LastRankUpdate null.Time `boil:"last_rank_update" json:"last_rank_update,omitempty"`

	// 时间戳
	CreatedAt time.Time `boil:"created_at" json:"created_at"`
	UpdatedAt time.Time `boil:"updated_at" json:"updated_at"`
	DeletedAt null.Time `boil:"deleted_at" json:"deleted_at,omitempty"`
}

// TableName 返回表名
func (Player) TableName() string {
	return "players"
}

// IsDeleted 检查玩家是否被软删除
func (p *Player) IsDeleted() bool {
	return p.DeletedAt.Valid
}

// IsRanked 检查玩家是否已有排名
func (p *Player) IsRanked() bool {
	return p.Rank.Valid
}
