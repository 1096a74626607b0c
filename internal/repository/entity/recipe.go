package entity

import (
	"time"

	"github.com/aarondl/sqlboiler/v4/types"
)

// Recipe 数据库制作配方实体
type Recipe struct {
	ID           string `boil:"id" json:"id"`
	Name         string `boil:"name" json:"name"`
	ResultItemID string `boil:"result_item_id" json:"result_item_id"`

	// 所需材料，形如 [{"item_id": "...", "quantity": 3}]
	Materials types.JSON `boil:"materials" json:"materials"`

	// 成功率，(0, 1]
	SuccessRate float64 `boil:"success_rate" json:"success_rate"`

	// 学习该配方所需的最低等级
	RequiredLevel int `boil:"required_level" json:"required_level"`

	CreatedAt time.Time `boil:"created_at" json:"created_at"`
	UpdatedAt time.Time `boil:"updated_at" json:"updated_at"`
}

// TableName 返回表名
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeMaterial 配方材料条目（materials JSON 的元素结构）
type RecipeMaterial struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// PlayerRecipe 数据库玩家已学配方实体
type PlayerRecipe struct {
	ID        string    `boil:"id" json:"id"`
	PlayerID  string    `boil:"player_id" json:"player_id"`
	RecipeID  string    `boil:"recipe_id" json:"recipe_id"`
	CreatedAt time.Time `boil:"created_at" json:"created_at"`
}

// TableName 返回表名
func (PlayerRecipe) TableName() string {
	return "player_recipes"
}
