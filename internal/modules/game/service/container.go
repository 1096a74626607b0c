package service

import (
	"database/sql"

	"emberfall-server/internal/pkg/config"
	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/repository/impl"
	"emberfall-server/internal/repository/interfaces"
)

// ServiceContainer 游戏服务容器 - 统一管理所有 Repository 和 Service
// 目的：避免重复创建 Repository，简化依赖注入
type ServiceContainer struct {
	// 所有 Repository（共享实例）
	playerRepo     interfaces.PlayerRepository
	playerItemRepo interfaces.PlayerItemRepository
	itemRepo       interfaces.ItemRepository
	battleRepo     interfaces.BattleRecordRepository
	listingRepo    interfaces.MarketListingRepository
	recipeRepo     interfaces.RecipeRepository
	dailyClaimRepo interfaces.DailyClaimRepository

	// 所有 Service（共享实例）
	PlayerService      *PlayerService
	CombatService      *CombatService
	RankingService     *RankingService
	InventoryService   *InventoryService
	DailyRewardService *DailyRewardService
	CraftService       *CraftService
	MarketService      *MarketService
}

// NewServiceContainer 创建服务容器
func NewServiceContainer(db *sql.DB, cache InventoryCache, cfg *config.GameConfig, bm *metrics.BusinessMetrics) *ServiceContainer {
	c := &ServiceContainer{}

	// 初始化所有 Repository
	c.playerRepo = impl.NewPlayerRepository(db)
	c.playerItemRepo = impl.NewPlayerItemRepository(db)
	c.itemRepo = impl.NewItemRepository(db)
	c.battleRepo = impl.NewBattleRecordRepository(db)
	c.listingRepo = impl.NewMarketListingRepository(db)
	c.recipeRepo = impl.NewRecipeRepository(db)
	c.dailyClaimRepo = impl.NewDailyClaimRepository(db)

	// 初始化所有 Service
	c.PlayerService = NewPlayerService(db, c.playerRepo, cfg)
	c.CombatService = NewCombatService(db, c.playerRepo, c.playerItemRepo, c.itemRepo, c.battleRepo, cfg, bm)
	c.RankingService = NewRankingService(db, c.playerRepo, bm)
	c.InventoryService = NewInventoryService(db, c.playerItemRepo, c.itemRepo, cache, cfg.InventoryCacheTTL, bm)
	c.DailyRewardService = NewDailyRewardService(db, c.playerRepo, c.dailyClaimRepo, cfg, bm)
	c.CraftService = NewCraftService(db, c.playerRepo, c.playerItemRepo, c.recipeRepo, c.InventoryService, bm)
	c.MarketService = NewMarketService(db, c.playerRepo, c.playerItemRepo, c.listingRepo, c.InventoryService, cfg, bm)

	return c
}
