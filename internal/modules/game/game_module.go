package game

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	custommiddleware "emberfall-server/internal/middleware"
	"emberfall-server/internal/modules/game/handler"
	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/modules/game/tasks"
	"emberfall-server/internal/pkg/config"
	"emberfall-server/internal/pkg/i18n"
	"emberfall-server/internal/pkg/log"
	"emberfall-server/internal/pkg/metrics"
	redisClient "emberfall-server/internal/pkg/redis"
	"emberfall-server/internal/pkg/response"
	"emberfall-server/internal/pkg/trace"
	"emberfall-server/internal/pkg/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/liangdas/mqant/conf"
	"github.com/liangdas/mqant/module"
	basemodule "github.com/liangdas/mqant/module/base"
	"github.com/liangdas/mqant/server"
	_ "github.com/lib/pq"
)

type GameModule struct {
	basemodule.BaseModule
	db                *sql.DB
	redis             *redisClient.Client
	gameConfig        config.GameConfig
	httpServer        *echo.Echo
	serviceContainer  *service.ServiceContainer
	playerHandler     *handler.PlayerHandler
	combatHandler     *handler.CombatHandler
	rankingHandler    *handler.RankingHandler
	inventoryHandler  *handler.InventoryHandler
	dailyHandler      *handler.DailyRewardHandler
	craftHandler      *handler.CraftHandler
	marketHandler     *handler.MarketHandler
	rpcHandler        *handler.GameRPCHandler
	rankingTask       *tasks.RankingTask
	listingExpireTask *tasks.ListingExpireTask
	respWriter        response.Writer
}

// GetType returns module type
func (m *GameModule) GetType() string {
	return "game"
}

// Version returns module version
func (m *GameModule) Version() string {
	return "1.0.0"
}

// OnAppConfigurationLoaded 当App初始化时调用
func (m *GameModule) OnAppConfigurationLoaded(app module.App) {
	m.BaseModule.OnAppConfigurationLoaded(app)
}

// OnInit module initialization
func (m *GameModule) OnInit(app module.App, settings *conf.ModuleSettings) {
	metrics.SetServiceName("game")
	// TTL = 30s, 心跳间隔 = 15s (TTL 必须大于心跳间隔)
	m.BaseModule.OnInit(m, app, settings,
		server.RegisterInterval(15*time.Second),
		server.RegisterTTL(30*time.Second),
	)

	// 1. Load game numeric config
	m.gameConfig = config.LoadGameConfig()

	// 2. Initialize database connection
	if err := m.initDatabase(settings); err != nil {
		panic(fmt.Sprintf("Failed to initialize database: %v", err))
	}

	// 3. Initialize Redis (inventory read cache)
	if err := m.initRedis(settings); err != nil {
		panic(fmt.Sprintf("Failed to initialize Redis: %v", err))
	}

	// 4. Initialize response writer
	m.initResponseWriter()

	// 5. Initialize HTTP server
	m.initHTTPServer()

	// 6. Initialize Services and Handlers
	m.initServicesAndHandlers()

	// 7. Setup routes
	m.setupRoutes()

	// 8. Setup RPC methods
	m.setupRPCMethods()

	// 9. Start cron tasks
	m.startCronTasks()

	// 10. Start HTTP server in background
	go m.startHTTPServer(settings)

	m.GetServer().Options()
}

// initDatabase initializes database connection
func (m *GameModule) initDatabase(settings *conf.ModuleSettings) error {
	// Read from environment variable first
	dbURL := os.Getenv("EMBERFALL_DATABASE_URL")
	if dbURL == "" {
		// Fallback to config file
		if settings != nil && settings.Settings != nil {
			dbURLInterface, ok := settings.Settings["database_url"]
			if ok {
				dbURL, _ = dbURLInterface.(string)
			}
		}
	}

	if dbURL == "" {
		return fmt.Errorf("EMBERFALL_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	m.db = db
	fmt.Println("[Game Module] Database initialized successfully")

	// 启动数据库连接池监控
	go m.startDBPoolMonitoring(db)

	return nil
}

// initRedis initializes Redis client for the inventory read cache
func (m *GameModule) initRedis(settings *conf.ModuleSettings) error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}

	port := 6379
	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	password := os.Getenv("REDIS_PASSWORD")

	dbIndex := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if d, err := strconv.Atoi(dbStr); err == nil {
			dbIndex = d
		}
	}

	client, err := redisClient.NewClient(redisClient.Config{
		Host:     host,
		Port:     port,
		Password: password,
		DB:       dbIndex,
	}, metrics.GetServiceName())
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.redis = client
	fmt.Printf("[Game Module] Redis connected successfully (Host: %s:%d, DB: %d)\n", host, port, dbIndex)
	return nil
}

// initResponseWriter initializes response writer
func (m *GameModule) initResponseWriter() {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	// 使用全局 logger
	logger := log.GetLogger()
	m.respWriter = response.NewResponseHandler(logger, environment)
	fmt.Println("[Game Module] Response writer initialized")
}

// initHTTPServer initializes HTTP server
func (m *GameModule) initHTTPServer() {
	m.httpServer = echo.New()

	// Hide banner
	m.httpServer.HideBanner = true
	m.httpServer.HidePort = true

	// Register validator
	m.httpServer.Validator = validator.New()

	// 获取全局 logger
	logger := log.GetLogger()

	// ========== 中间件配置（顺序很重要！） ==========

	// 1. TraceID 中间件 - 最先执行，生成或提取 TraceID
	m.httpServer.Use(trace.Middleware())

	// 2. Metrics 中间件 - 记录 HTTP 方法到 context（用于 Prometheus）
	m.httpServer.Use(metrics.Middleware())

	// 3. i18n 中间件 - 语言检测和设置
	m.httpServer.Use(i18n.Middleware())

	// 4. Logging 中间件 - 记录请求日志（依赖 TraceID）
	m.httpServer.Use(custommiddleware.LoggingMiddleware(logger))

	// 5. Recovery 中间件 - 捕获 panic
	m.httpServer.Use(custommiddleware.RecoveryMiddleware(m.respWriter, logger))

	// 6. Error 中间件 - 统一错误处理
	m.httpServer.Use(custommiddleware.ErrorMiddleware(m.respWriter, logger))

	// 7. CORS 中间件
	m.httpServer.Use(middleware.CORS())

	fmt.Println("[Game Module] HTTP middlewares configured:")
	fmt.Println("  ✓ TraceID (自动生成追踪ID)")
	fmt.Println("  ✓ Metrics (Prometheus 指标收集)")
	fmt.Println("  ✓ i18n (国际化支持)")
	fmt.Println("  ✓ Logging (日志记录)")
	fmt.Println("  ✓ Recovery (Panic 恢复)")
	fmt.Println("  ✓ Error (统一错误处理)")
	fmt.Println("  ✓ CORS (跨域支持)")
}

// initServicesAndHandlers initializes services and HTTP handlers
func (m *GameModule) initServicesAndHandlers() {
	// 创建服务容器（统一管理所有 Repository 和 Service）
	m.serviceContainer = service.NewServiceContainer(m.db, m.redis, &m.gameConfig, metrics.DefaultBusinessMetrics)

	// 初始化 HTTP Handlers（从容器中获取需要的服务）
	m.playerHandler = handler.NewPlayerHandler(m.serviceContainer, m.respWriter)
	m.combatHandler = handler.NewCombatHandler(m.serviceContainer, m.respWriter)
	m.rankingHandler = handler.NewRankingHandler(m.serviceContainer, m.respWriter)
	m.inventoryHandler = handler.NewInventoryHandler(m.serviceContainer, m.respWriter)
	m.dailyHandler = handler.NewDailyRewardHandler(m.serviceContainer, m.respWriter)
	m.craftHandler = handler.NewCraftHandler(m.serviceContainer, m.respWriter)
	m.marketHandler = handler.NewMarketHandler(m.serviceContainer, m.respWriter)
	m.rpcHandler = handler.NewGameRPCHandler(m.serviceContainer)

	fmt.Println("[Game Module] Handlers initialized successfully")
}

// startCronTasks starts cron scheduled tasks
func (m *GameModule) startCronTasks() {
	logger := log.GetLogger()

	// 1. 排行榜重算任务
	m.rankingTask = tasks.NewRankingTask(m.serviceContainer.RankingService, logger)
	m.rankingTask.Start()

	// 2. 挂单过期任务
	m.listingExpireTask = tasks.NewListingExpireTask(m.serviceContainer.MarketService, logger)
	m.listingExpireTask.Start()

	fmt.Println("[Game Module] Cron tasks started successfully:")
	fmt.Println("  ✓ Ranking Task (每5分钟)")
	fmt.Println("  ✓ Listing Expire Task (每10分钟)")
}

// setupRoutes sets up HTTP routes
func (m *GameModule) setupRoutes() {
	// API v1 group
	v1 := m.httpServer.Group("/api/v1")

	// Game routes
	game := v1.Group("/game")
	{
		// Player routes
		players := game.Group("/players")
		{
			players.POST("", m.playerHandler.CreatePlayer)                // 创建玩家
			players.GET("/:id", m.playerHandler.GetPlayer)                // 查询玩家
			players.POST("/:id/heal", m.playerHandler.Heal)               // 治疗
			players.POST("/:id/stats/allocate", m.playerHandler.AllocateStat) // 属性加点
		}

		// Battle routes
		battles := game.Group("/battles")
		{
			battles.POST("", m.combatHandler.StartBattle)                             // 发起战斗
			battles.GET("/:id", m.combatHandler.GetBattle)                            // 查询战斗记录
			battles.GET("/history/:player_id", m.combatHandler.GetBattleHistory)      // 战斗历史
		}

		// Ranking routes
		rankings := game.Group("/rankings")
		{
			rankings.GET("", m.rankingHandler.GetTopRankings)                          // 排行榜
			rankings.POST("/refresh", m.rankingHandler.RefreshRankings)                // 手动重算
			rankings.POST("/players/:player_id", m.rankingHandler.UpdatePlayerRanking) // 单玩家更新
		}

		// Inventory routes
		inventory := game.Group("/inventory/:player_id")
		{
			inventory.GET("", m.inventoryHandler.GetInventory)            // 背包列表
			inventory.GET("/stats", m.inventoryHandler.GetInventoryStats) // 背包统计
			inventory.GET("/items/:item_id", m.inventoryHandler.GetInventoryItem) // 单品查询
			inventory.POST("/items", m.inventoryHandler.AddItem)          // 添加物品
			inventory.DELETE("/items", m.inventoryHandler.RemoveItem)     // 移除物品
			inventory.POST("/equip", m.inventoryHandler.SetEquipped)      // 装备/卸下
		}

		// Daily reward routes
		daily := game.Group("/daily-reward")
		{
			daily.POST("/:player_id/claim", m.dailyHandler.Claim) // 领取每日奖励
			daily.GET("/:player_id/status", m.dailyHandler.Status) // 领取状态
		}

		// Craft routes
		craft := game.Group("/craft")
		{
			craft.GET("/recipes/:player_id", m.craftHandler.ListRecipes) // 配方列表
			craft.POST("/learn", m.craftHandler.LearnRecipe)             // 学习配方
			craft.POST("", m.craftHandler.Craft)                         // 执行锻造
		}

		// Market routes
		market := game.Group("/market")
		{
			market.GET("/listings", m.marketHandler.SearchListings)             // 搜索挂单
			market.POST("/listings", m.marketHandler.CreateListing)             // 上架
			market.POST("/listings/:id/cancel", m.marketHandler.CancelListing)  // 下架
			market.POST("/listings/:id/purchase", m.marketHandler.PurchaseListing) // 购买
		}
	}

	// Health check
	m.httpServer.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status": "ok",
			"module": "game",
		})
	})

	// Prometheus metrics endpoint
	m.httpServer.GET("/metrics", metrics.EchoHandler())

	fmt.Println("[Game Module] Routes configured successfully")
	fmt.Println("[Game Module] Game API routes: /api/v1/game/*")
	fmt.Println("[Game Module] Prometheus metrics available at /metrics")
}

// startHTTPServer starts HTTP server
func (m *GameModule) startHTTPServer(settings *conf.ModuleSettings) {
	// Read HTTP port from environment variable first
	port := os.Getenv("GAME_HTTP_PORT")
	if port == "" {
		// Fallback to config file
		if settings != nil && settings.Settings != nil {
			portInterface, ok := settings.Settings["http_port"]
			if ok {
				port, _ = portInterface.(string)
			}
		}
	}

	if port == "" {
		port = "8072" // Default port
	}

	fmt.Printf("[Game Module] Starting HTTP server on port %s\n", port)

	if err := m.httpServer.Start(":" + port); err != nil {
		fmt.Printf("[Game Module] HTTP server error: %v\n", err)
	}
}

// Run module run
func (m *GameModule) Run(closeSig chan bool) {
	fmt.Println("[Game Module] Started successfully")
	<-closeSig
}

// OnDestroy module destroy
func (m *GameModule) OnDestroy() {
	// Stop cron tasks
	if m.rankingTask != nil {
		m.rankingTask.Stop()
	}
	if m.listingExpireTask != nil {
		m.listingExpireTask.Stop()
	}

	// Close HTTP server
	if m.httpServer != nil {
		if err := m.httpServer.Close(); err != nil {
			fmt.Printf("[Game Module] Failed to close HTTP server: %v\n", err)
		} else {
			fmt.Println("[Game Module] HTTP server closed")
		}
	}

	// Close database connection
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			fmt.Printf("[Game Module] Failed to close database: %v\n", err)
		} else {
			fmt.Println("[Game Module] Database connection closed")
		}
	}

	m.BaseModule.OnDestroy()
	fmt.Println("[Game Module] Destroyed")
}

// Module creates Game module instance
func Module() module.Module {
	return new(GameModule)
}

// startDBPoolMonitoring 启动数据库连接池监控
// 每 30 秒报告一次连接池统计信息到 Prometheus
func (m *GameModule) startDBPoolMonitoring(db *sql.DB) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := db.Stats()

		metrics.DefaultResourceMetrics.RecordDBPoolStats(
			metrics.GetServiceName(),
			"postgres",            // 数据库名称
			stats.OpenConnections, // 当前打开的连接数
			stats.InUse,           // 正在使用的连接数
			stats.Idle,            // 空闲连接数
			25,                    // 最大连接数（与 SetMaxOpenConns 保持一致）
			stats.WaitCount,       // 等待连接的总次数
			stats.WaitDuration,    // 等待连接的总时长
		)
	}
}

// setupRPCMethods 注册 RPC 方法
// 供其他模块（如 Admin Server）调用，载荷为 JSON
func (m *GameModule) setupRPCMethods() {
	m.GetServer().RegisterGO("GetPlayerSummary", m.rpcHandler.GetPlayerSummary)
	m.GetServer().RegisterGO("GetTopRankings", m.rpcHandler.GetTopRankings)

	fmt.Println("[Game Module] RPC methods registered:")
	fmt.Println("  ✓ GetPlayerSummary - 获取玩家摘要")
	fmt.Println("  ✓ GetTopRankings - 获取排行榜")
}
