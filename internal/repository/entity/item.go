package entity

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/types"
)

// 物品类型
const (
	ItemTypeWeapon     = "weapon"
	ItemTypeArmor      = "armor"
	ItemTypeConsumable = "consumable"
	ItemTypeMaterial   = "material"
)

// Item 数据库物品模板实体
type Item struct {
	ID          string      `boil:"id" json:"id"`
	Name        string      `boil:"name" json:"name"`
	Description null.String `boil:"description" json:"description,omitempty"`
	ItemType    string      `boil:"item_type" json:"item_type"`
	Quality     string      `boil:"quality" json:"quality"`
	Price       int         `boil:"price" json:"price"`

	// 装备时附加到玩家属性上的修正值，形如 {"strength": 5, "defense": 2}
	StatModifiers types.JSON `boil:"stat_modifiers" json:"stat_modifiers"`

	CreatedAt time.Time `boil:"created_at" json:"created_at"`
	UpdatedAt time.Time `boil:"updated_at" json:"updated_at"`
}

// TableName 返回表名
func (Item) TableName() string {
	return "items"
}

// IsEquippable 检查物品是否可装备
func (i *Item) IsEquippable() bool {
	return i.ItemType == ItemTypeWeapon || i.ItemType == ItemTypeArmor
}
