package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/query"
)

// fakeKV 内存键值缓存
type fakeKV struct {
	data map[string]string
	sets int
	gets int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (c *fakeKV) GetString(ctx context.Context, key string) (string, bool, error) {
	c.gets++
	value, ok := c.data[key]
	return value, ok, nil
}

func (c *fakeKV) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	c.data[key] = fmt.Sprintf("%v", value)
	return nil
}

func (c *fakeKV) DeleteKey(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

// fakePlayerItemRepo 内存版背包仓储
type fakePlayerItemRepo struct {
	items map[string]*entity.PlayerItem // key: playerID+"/"+itemID
}

func newFakePlayerItemRepo() *fakePlayerItemRepo {
	return &fakePlayerItemRepo{items: make(map[string]*entity.PlayerItem)}
}

func itemKey(playerID, itemID string) string { return playerID + "/" + itemID }

func (r *fakePlayerItemRepo) GetByPlayer(ctx context.Context, params query.InventoryParams) ([]*entity.PlayerItem, error) {
	var out []*entity.PlayerItem
	for _, item := range r.items {
		if item.PlayerID == params.PlayerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakePlayerItemRepo) GetByPlayerAndItem(ctx context.Context, playerID, itemID string) (*entity.PlayerItem, error) {
	item, ok := r.items[itemKey(playerID, itemID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return item, nil
}

func (r *fakePlayerItemRepo) GetByPlayerAndItemForUpdate(ctx context.Context, tx *sql.Tx, playerID, itemID string) (*entity.PlayerItem, error) {
	return r.GetByPlayerAndItem(ctx, playerID, itemID)
}

func (r *fakePlayerItemRepo) AddQuantity(ctx context.Context, execer boil.ContextExecutor, playerID, itemID string, delta int) error {
	key := itemKey(playerID, itemID)
	if item, ok := r.items[key]; ok {
		item.Quantity += delta
		return nil
	}
	r.items[key] = &entity.PlayerItem{
		ID:       key,
		PlayerID: playerID,
		ItemID:   itemID,
		Quantity: delta,
	}
	return nil
}

func (r *fakePlayerItemRepo) RemoveQuantity(ctx context.Context, execer boil.ContextExecutor, playerID, itemID string, delta int) error {
	key := itemKey(playerID, itemID)
	item, ok := r.items[key]
	if !ok || item.Quantity < delta {
		return sql.ErrNoRows
	}
	item.Quantity -= delta
	if item.Quantity == 0 {
		delete(r.items, key)
	}
	return nil
}

func (r *fakePlayerItemRepo) SetEquipped(ctx context.Context, execer boil.ContextExecutor, playerID, itemID string, equipped bool) error {
	item, ok := r.items[itemKey(playerID, itemID)]
	if !ok {
		return sql.ErrNoRows
	}
	item.Equipped = equipped
	return nil
}

func (r *fakePlayerItemRepo) GetEquipped(ctx context.Context, playerID string) ([]*entity.PlayerItem, error) {
	var out []*entity.PlayerItem
	for _, item := range r.items {
		if item.PlayerID == playerID && item.Equipped {
			out = append(out, item)
		}
	}
	return out, nil
}

// fakeItemRepo 内存版物品模板仓储
type fakeItemRepo struct {
	templates map[string]*entity.Item
}

func newFakeItemRepo(items ...*entity.Item) *fakeItemRepo {
	repo := &fakeItemRepo{templates: make(map[string]*entity.Item)}
	for _, item := range items {
		repo.templates[item.ID] = item
	}
	return repo
}

func (r *fakeItemRepo) GetByID(ctx context.Context, itemID string) (*entity.Item, error) {
	item, ok := r.templates[itemID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return item, nil
}

func (r *fakeItemRepo) GetByIDs(ctx context.Context, itemIDs []string) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, id := range itemIDs {
		if item, ok := r.templates[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) GetAll(ctx context.Context) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, item := range r.templates {
		out = append(out, item)
	}
	return out, nil
}

func testItem(id, name, itemType string) *entity.Item {
	return &entity.Item{
		ID:          id,
		Name:        name,
		ItemType:    itemType,
		Quality:     "common",
		Description: null.StringFrom("测试物品"),
	}
}

func newTestInventoryService(t *testing.T) (*InventoryService, *fakeKV, *fakePlayerItemRepo, *fakeItemRepo) {
	t.Helper()
	cache := newFakeKV()
	playerItems := newFakePlayerItemRepo()
	items := newFakeItemRepo(
		testItem("sword", "铁剑", entity.ItemTypeWeapon),
		testItem("potion", "回复药水", entity.ItemTypeConsumable),
		testItem("ore", "铁矿石", entity.ItemTypeMaterial),
	)
	bm := metrics.NewBusinessMetricsWithRegistry("emberfall_test", nil)
	svc := NewInventoryService(nil, playerItems, items, cache, 900*time.Second, bm)
	return svc, cache, playerItems, items
}

func TestInventoryService_ReadThroughCache(t *testing.T) {
	svc, cache, playerItems, _ := newTestInventoryService(t)
	ctx := context.Background()

	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "sword", 1))
	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "potion", 5))

	// 首次读回源并写缓存
	inventory, err := svc.GetInventory(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, inventory, 2)
	assert.Equal(t, 1, cache.sets)

	// 第二次读命中缓存，不再写
	inventory, err = svc.GetInventory(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, inventory, 2)
	assert.Equal(t, 1, cache.sets, "缓存命中不应再回源")
}

func TestInventoryService_InvalidateForcesFreshRead(t *testing.T) {
	svc, _, playerItems, _ := newTestInventoryService(t)
	ctx := context.Background()

	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "potion", 5))

	inventory, err := svc.GetInventory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, inventory, 1)
	assert.Equal(t, 5, inventory[0].Quantity)

	// 绕过服务直接改底层数据，缓存此时已过期失真
	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "potion", 5))

	// 失效后必须读到数据库当前状态，无论 TTL 剩多少
	svc.Invalidate(ctx, "p1", "potion")
	inventory, err = svc.GetInventory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, inventory, 1)
	assert.Equal(t, 10, inventory[0].Quantity)
}

func TestInventoryService_MutationsInvalidateAllKeys(t *testing.T) {
	svc, cache, _, _ := newTestInventoryService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, "p1", "sword", 1))

	// 预热三类缓存键
	_, err := svc.GetInventory(ctx, "p1")
	require.NoError(t, err)
	_, err = svc.GetStats(ctx, "p1")
	require.NoError(t, err)
	_, err = svc.GetItem(ctx, "p1", "sword")
	require.NoError(t, err)

	listKey := fmt.Sprintf(inventoryListKeyFmt, "p1")
	statsKey := fmt.Sprintf(inventoryStatsKeyFmt, "p1")
	itemKey := fmt.Sprintf(inventoryItemKeyFmt, "p1", "sword")
	require.Contains(t, cache.data, listKey)
	require.Contains(t, cache.data, statsKey)
	require.Contains(t, cache.data, itemKey)

	// 任何变更操作必须同时失效列表、统计与单品键
	require.NoError(t, svc.AddItem(ctx, "p1", "sword", 2))
	assert.NotContains(t, cache.data, listKey)
	assert.NotContains(t, cache.data, statsKey)
	assert.NotContains(t, cache.data, itemKey)
}

func TestInventoryService_GetStats(t *testing.T) {
	svc, _, playerItems, _ := newTestInventoryService(t)
	ctx := context.Background()

	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "sword", 1))
	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "potion", 5))
	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "ore", 20))

	stats, err := svc.GetStats(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, 26, stats.TotalItems)
	assert.Equal(t, 3, stats.UniqueItems)
	assert.Equal(t, 1, stats.ItemsByType[entity.ItemTypeWeapon])
	assert.Equal(t, 5, stats.ItemsByType[entity.ItemTypeConsumable])
	assert.Equal(t, 20, stats.ItemsByType[entity.ItemTypeMaterial])
}

func TestInventoryService_RemoveItemInsufficient(t *testing.T) {
	svc, _, playerItems, _ := newTestInventoryService(t)
	ctx := context.Background()

	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "potion", 2))

	err := svc.RemoveItem(ctx, "p1", "potion", 5)
	require.Error(t, err)
}

func TestInventoryService_AddItemValidation(t *testing.T) {
	svc, _, _, _ := newTestInventoryService(t)
	ctx := context.Background()

	assert.Error(t, svc.AddItem(ctx, "p1", "sword", 0), "数量必须为正")
	assert.Error(t, svc.AddItem(ctx, "p1", "unknown-item", 1), "物品模板必须存在")
}

func TestInventoryService_SetEquipped(t *testing.T) {
	svc, _, playerItems, _ := newTestInventoryService(t)
	ctx := context.Background()

	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "sword", 1))
	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "potion", 1))

	require.NoError(t, svc.SetEquipped(ctx, "p1", "sword", true))
	equipped, err := playerItems.GetEquipped(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, equipped, 1)

	// 消耗品不可装备
	err = svc.SetEquipped(ctx, "p1", "potion", true)
	require.Error(t, err)
}
