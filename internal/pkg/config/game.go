package config

import "time"

// GameConfig 游戏全局数值配置
// 原则：不使用全局可变单例，由启动流程加载后注入到需要的服务中。
// 经验/金币倍率只在奖励计算边界生效。
type GameConfig struct {
	// 战斗奖励倍率
	ExperienceMultiplier float64
	GoldMultiplier       float64

	// PvP 奖励基础值（PvE 奖励公式固定，PvP 数值由配置提供）
	PvPExperienceReward int
	PvPGoldReward       int

	// 回合上限（每回合最多两次出手）
	BattleRoundCap int

	// 治疗花费（金币，0 表示免费）
	HealGoldCost int

	// 背包读取缓存 TTL
	InventoryCacheTTL time.Duration

	// 每日奖励基础值
	DailyBaseGold       int
	DailyStreakGoldStep int
	DailyStreakCap      int
	DailyExperiencePer  int

	// 市场挂单有效期
	ListingDuration time.Duration
}

// DefaultGameConfig 默认数值
func DefaultGameConfig() GameConfig {
	return GameConfig{
		ExperienceMultiplier: 1.0,
		GoldMultiplier:       1.0,
		PvPExperienceReward:  50,
		PvPGoldReward:        30,
		BattleRoundCap:       20,
		HealGoldCost:         0,
		InventoryCacheTTL:    900 * time.Second,
		DailyBaseGold:        50,
		DailyStreakGoldStep:  25,
		DailyStreakCap:       7,
		DailyExperiencePer:   20,
		ListingDuration:      72 * time.Hour,
	}
}

// LoadGameConfig 从环境变量加载游戏配置，未设置的项使用默认值
func LoadGameConfig() GameConfig {
	cfg := DefaultGameConfig()

	cfg.ExperienceMultiplier = GetEnvFloat("GAME_EXP_MULTIPLIER", cfg.ExperienceMultiplier)
	cfg.GoldMultiplier = GetEnvFloat("GAME_GOLD_MULTIPLIER", cfg.GoldMultiplier)
	cfg.PvPExperienceReward = GetEnvInt("GAME_PVP_EXP_REWARD", cfg.PvPExperienceReward)
	cfg.PvPGoldReward = GetEnvInt("GAME_PVP_GOLD_REWARD", cfg.PvPGoldReward)
	if rounds := GetEnvInt("GAME_BATTLE_ROUND_CAP", 0); rounds > 0 {
		cfg.BattleRoundCap = rounds
	}
	cfg.HealGoldCost = GetEnvInt("GAME_HEAL_GOLD_COST", cfg.HealGoldCost)

	if ttl := GetEnvInt("GAME_INVENTORY_CACHE_TTL_SECONDS", 0); ttl > 0 {
		cfg.InventoryCacheTTL = time.Duration(ttl) * time.Second
	}
	if hours := GetEnvInt("GAME_LISTING_DURATION_HOURS", 0); hours > 0 {
		cfg.ListingDuration = time.Duration(hours) * time.Hour
	}

	return cfg
}
