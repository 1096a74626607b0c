package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"emberfall-server/internal/pkg/log"
	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/interfaces"
	"emberfall-server/internal/repository/query"
)

// 缓存键格式
const (
	inventoryListKeyFmt  = "inventory:list:%s"
	inventoryStatsKeyFmt = "inventory:stats:%s"
	inventoryItemKeyFmt  = "inventory:item:%s:%s"
)

// InventoryCache 背包读缓存依赖的键值存储
type InventoryCache interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteKey(ctx context.Context, keys ...string) error
}

// InventoryItem 背包条目视图（物品模板 + 数量）
type InventoryItem struct {
	ItemID      string `json:"item_id"`
	Name        string `json:"name"`
	ItemType    string `json:"item_type"`
	Quality     string `json:"quality"`
	Quantity    int    `json:"quantity"`
	Equipped    bool   `json:"equipped"`
	Description string `json:"description,omitempty"`
}

// InventoryStats 背包聚合统计
type InventoryStats struct {
	TotalItems  int            `json:"total_items"`
	UniqueItems int            `json:"unique_items"`
	ItemsByType map[string]int `json:"items_by_type"`
}

// InventoryService 背包服务。
// 读路径走固定 TTL 的旁路缓存，所有写路径必须同时失效
// 列表、统计与单品三类键，缓存自身不做任何自动失效。
type InventoryService struct {
	db             *sql.DB
	playerItemRepo interfaces.PlayerItemRepository
	itemRepo       interfaces.ItemRepository
	cache          InventoryCache
	ttl            time.Duration
	metrics        *metrics.BusinessMetrics
	logger         log.Logger
}

// NewInventoryService 创建背包服务
func NewInventoryService(
	db *sql.DB,
	playerItemRepo interfaces.PlayerItemRepository,
	itemRepo interfaces.ItemRepository,
	cache InventoryCache,
	ttl time.Duration,
	bm *metrics.BusinessMetrics,
) *InventoryService {
	return &InventoryService{
		db:             db,
		playerItemRepo: playerItemRepo,
		itemRepo:       itemRepo,
		cache:          cache,
		ttl:            ttl,
		metrics:        bm,
		logger:         log.GetLogger(),
	}
}

// GetInventory 查询玩家背包列表，命中缓存直接返回，
// 未命中时回源并在返回前写入缓存。
func (s *InventoryService) GetInventory(ctx context.Context, playerID string) ([]*InventoryItem, error) {
	key := fmt.Sprintf(inventoryListKeyFmt, playerID)

	if cached, ok := s.getCached(ctx, key); ok {
		var items []*InventoryItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			s.metrics.IncInventoryCacheHit(serviceName)
			return items, nil
		}
	}
	s.metrics.IncInventoryCacheMiss(serviceName)

	items, err := s.loadInventory(ctx, playerID)
	if err != nil {
		return nil, err
	}

	s.setCached(ctx, key, items)
	return items, nil
}

// GetItem 查询玩家单个物品条目
func (s *InventoryService) GetItem(ctx context.Context, playerID, itemID string) (*InventoryItem, error) {
	key := fmt.Sprintf(inventoryItemKeyFmt, playerID, itemID)

	if cached, ok := s.getCached(ctx, key); ok {
		var item InventoryItem
		if err := json.Unmarshal([]byte(cached), &item); err == nil {
			s.metrics.IncInventoryCacheHit(serviceName)
			return &item, nil
		}
	}
	s.metrics.IncInventoryCacheMiss(serviceName)

	playerItem, err := s.playerItemRepo.GetByPlayerAndItem(ctx, playerID, itemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewItemNotFoundError(itemID)
		}
		return nil, xerrors.NewDatabaseError("get_player_item", "player_items", err)
	}

	template, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewItemNotFoundError(itemID)
		}
		return nil, xerrors.NewDatabaseError("get_item", "items", err)
	}

	item := &InventoryItem{
		ItemID:      template.ID,
		Name:        template.Name,
		ItemType:    template.ItemType,
		Quality:     template.Quality,
		Quantity:    playerItem.Quantity,
		Equipped:    playerItem.Equipped,
		Description: template.Description.String,
	}

	s.setCached(ctx, key, item)
	return item, nil
}

// GetStats 查询玩家背包聚合统计
func (s *InventoryService) GetStats(ctx context.Context, playerID string) (*InventoryStats, error) {
	key := fmt.Sprintf(inventoryStatsKeyFmt, playerID)

	if cached, ok := s.getCached(ctx, key); ok {
		var stats InventoryStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			s.metrics.IncInventoryCacheHit(serviceName)
			return &stats, nil
		}
	}
	s.metrics.IncInventoryCacheMiss(serviceName)

	items, err := s.loadInventory(ctx, playerID)
	if err != nil {
		return nil, err
	}

	stats := &InventoryStats{ItemsByType: make(map[string]int)}
	for _, item := range items {
		stats.TotalItems += item.Quantity
		stats.UniqueItems++
		stats.ItemsByType[item.ItemType] += item.Quantity
	}

	s.setCached(ctx, key, stats)
	return stats, nil
}

// AddItem 给玩家发放物品
func (s *InventoryService) AddItem(ctx context.Context, playerID, itemID string, quantity int) error {
	if quantity <= 0 {
		return xerrors.FromCode(xerrors.CodeItemQuantityInvalid).
			WithMetadata("quantity", quantity)
	}

	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		if err == sql.ErrNoRows {
			return xerrors.NewItemNotFoundError(itemID)
		}
		return xerrors.NewDatabaseError("get_item", "items", err)
	}

	if err := s.playerItemRepo.AddQuantity(ctx, s.db, playerID, itemID, quantity); err != nil {
		return xerrors.NewPersistenceError("add_item", err)
	}

	s.Invalidate(ctx, playerID, itemID)
	return nil
}

// RemoveItem 扣减玩家物品
func (s *InventoryService) RemoveItem(ctx context.Context, playerID, itemID string, quantity int) error {
	if quantity <= 0 {
		return xerrors.FromCode(xerrors.CodeItemQuantityInvalid).
			WithMetadata("quantity", quantity)
	}

	if err := s.playerItemRepo.RemoveQuantity(ctx, s.db, playerID, itemID, quantity); err != nil {
		if err == sql.ErrNoRows {
			return xerrors.FromCode(xerrors.CodeInventoryInsufficient).
				WithMetadata("item_id", itemID).
				WithMetadata("quantity", quantity)
		}
		return xerrors.NewPersistenceError("remove_item", err)
	}

	s.Invalidate(ctx, playerID, itemID)
	return nil
}

// SetEquipped 穿脱装备
func (s *InventoryService) SetEquipped(ctx context.Context, playerID, itemID string, equipped bool) error {
	template, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return xerrors.NewItemNotFoundError(itemID)
		}
		return xerrors.NewDatabaseError("get_item", "items", err)
	}
	if equipped && !template.IsEquippable() {
		return xerrors.NewValidationError("item_id", "该物品不可装备")
	}

	if err := s.playerItemRepo.SetEquipped(ctx, s.db, playerID, itemID, equipped); err != nil {
		if err == sql.ErrNoRows {
			return xerrors.NewItemNotFoundError(itemID)
		}
		return xerrors.NewPersistenceError("set_equipped", err)
	}

	s.Invalidate(ctx, playerID, itemID)
	return nil
}

// Invalidate 失效玩家的背包缓存。列表键和统计键永远一起失效，
// 单品键在同一事件上同步失效，背包有任何变更的协作方都必须调用。
func (s *InventoryService) Invalidate(ctx context.Context, playerID string, itemIDs ...string) {
	keys := []string{
		fmt.Sprintf(inventoryListKeyFmt, playerID),
		fmt.Sprintf(inventoryStatsKeyFmt, playerID),
	}
	for _, itemID := range itemIDs {
		keys = append(keys, fmt.Sprintf(inventoryItemKeyFmt, playerID, itemID))
	}

	if err := s.cache.DeleteKey(ctx, keys...); err != nil {
		// 缓存失效失败只记日志，过期兜底由 TTL 保证
		s.logger.WarnContext(ctx, "背包缓存失效失败",
			log.String("player_id", playerID),
			log.Any("error", err),
		)
	}
}

func (s *InventoryService) loadInventory(ctx context.Context, playerID string) ([]*InventoryItem, error) {
	playerItems, err := s.playerItemRepo.GetByPlayer(ctx, query.InventoryParams{PlayerID: playerID})
	if err != nil {
		return nil, xerrors.NewDatabaseError("get_inventory", "player_items", err)
	}
	if len(playerItems) == 0 {
		return []*InventoryItem{}, nil
	}

	itemIDs := make([]string, 0, len(playerItems))
	for _, pi := range playerItems {
		itemIDs = append(itemIDs, pi.ItemID)
	}
	templates, err := s.itemRepo.GetByIDs(ctx, itemIDs)
	if err != nil {
		return nil, xerrors.NewDatabaseError("get_items", "items", err)
	}
	templateByID := make(map[string]int, len(templates))
	for i, t := range templates {
		templateByID[t.ID] = i
	}

	items := make([]*InventoryItem, 0, len(playerItems))
	for _, pi := range playerItems {
		idx, ok := templateByID[pi.ItemID]
		if !ok {
			continue
		}
		t := templates[idx]
		items = append(items, &InventoryItem{
			ItemID:      t.ID,
			Name:        t.Name,
			ItemType:    t.ItemType,
			Quality:     t.Quality,
			Quantity:    pi.Quantity,
			Equipped:    pi.Equipped,
			Description: t.Description.String,
		})
	}
	return items, nil
}

func (s *InventoryService) getCached(ctx context.Context, key string) (string, bool) {
	value, found, err := s.cache.GetString(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "读取背包缓存失败", log.String("key", key))
		return "", false
	}
	return value, found
}

func (s *InventoryService) setCached(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, string(payload), s.ttl); err != nil {
		s.logger.WarnContext(ctx, "写入背包缓存失败", log.String("key", key))
	}
}
