package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/entity"
)

// fakeRecipeRepo 内存版配方仓储
type fakeRecipeRepo struct {
	recipes map[string]*entity.Recipe
	learned map[string]bool // key: playerID+"/"+recipeID
}

func newFakeRecipeRepo(recipes ...*entity.Recipe) *fakeRecipeRepo {
	repo := &fakeRecipeRepo{
		recipes: make(map[string]*entity.Recipe),
		learned: make(map[string]bool),
	}
	for _, recipe := range recipes {
		repo.recipes[recipe.ID] = recipe
	}
	return repo
}

func (r *fakeRecipeRepo) GetByID(ctx context.Context, recipeID string) (*entity.Recipe, error) {
	recipe, ok := r.recipes[recipeID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return recipe, nil
}

func (r *fakeRecipeRepo) GetAll(ctx context.Context) ([]*entity.Recipe, error) {
	var out []*entity.Recipe
	for _, recipe := range r.recipes {
		out = append(out, recipe)
	}
	return out, nil
}

func (r *fakeRecipeRepo) GetLearned(ctx context.Context, playerID string) ([]*entity.PlayerRecipe, error) {
	var out []*entity.PlayerRecipe
	for key, known := range r.learned {
		if known && len(key) > len(playerID) && key[:len(playerID)] == playerID {
			out = append(out, &entity.PlayerRecipe{PlayerID: playerID, RecipeID: key[len(playerID)+1:]})
		}
	}
	return out, nil
}

func (r *fakeRecipeRepo) HasLearned(ctx context.Context, playerID, recipeID string) (bool, error) {
	return r.learned[playerID+"/"+recipeID], nil
}

func (r *fakeRecipeRepo) Learn(ctx context.Context, execer boil.ContextExecutor, playerRecipe *entity.PlayerRecipe) error {
	r.learned[playerRecipe.PlayerID+"/"+playerRecipe.RecipeID] = true
	return nil
}

// ironSwordRecipe 3 铁矿石 + 1 回复药水 → 铁剑，成功率 0.8
func ironSwordRecipe() *entity.Recipe {
	return &entity.Recipe{
		ID:            "recipe-sword",
		Name:          "铁剑锻造",
		ResultItemID:  "sword",
		Materials:     types.JSON(`[{"item_id":"ore","quantity":3},{"item_id":"potion","quantity":1}]`),
		SuccessRate:   0.8,
		RequiredLevel: 3,
	}
}

func newCraftTestService(t *testing.T, playerRepo *fakePlayerRepo, recipes *fakeRecipeRepo) (*CraftService, sqlmock.Sqlmock, *fakePlayerItemRepo) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	playerItems := newFakePlayerItemRepo()
	items := newFakeItemRepo(
		testItem("sword", "铁剑", entity.ItemTypeWeapon),
		testItem("potion", "回复药水", entity.ItemTypeConsumable),
		testItem("ore", "铁矿石", entity.ItemTypeMaterial),
	)
	bm := metrics.NewBusinessMetricsWithRegistry("emberfall_test", nil)
	inventory := NewInventoryService(nil, playerItems, items, newFakeKV(), 900*time.Second, bm)
	svc := NewCraftService(db, playerRepo, playerItems, recipes, inventory, bm)
	return svc, mock, playerItems
}

func stockMaterials(t *testing.T, playerItems *fakePlayerItemRepo, playerID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, playerItems.AddQuantity(ctx, nil, playerID, "ore", 5))
	require.NoError(t, playerItems.AddQuantity(ctx, nil, playerID, "potion", 2))
}

func TestCraftService_Craft(t *testing.T) {
	ctx := context.Background()

	t.Run("成功制作消耗材料并产出", func(t *testing.T) {
		recipes := newFakeRecipeRepo(ironSwordRecipe())
		recipes.learned["p1/recipe-sword"] = true
		svc, mock, playerItems := newCraftTestService(t, newFakePlayerRepo(), recipes)
		svc.roll = func() float64 { return 0.1 }
		mock.ExpectBegin()
		mock.ExpectCommit()

		stockMaterials(t, playerItems, "p1")

		result, err := svc.Craft(ctx, "p1", "recipe-sword")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "sword", result.ResultItemID)

		ore, err := playerItems.GetByPlayerAndItem(ctx, "p1", "ore")
		require.NoError(t, err)
		assert.Equal(t, 2, ore.Quantity)
		potion, err := playerItems.GetByPlayerAndItem(ctx, "p1", "potion")
		require.NoError(t, err)
		assert.Equal(t, 1, potion.Quantity)
		sword, err := playerItems.GetByPlayerAndItem(ctx, "p1", "sword")
		require.NoError(t, err)
		assert.Equal(t, 1, sword.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("失败同样消耗材料且无产出", func(t *testing.T) {
		recipes := newFakeRecipeRepo(ironSwordRecipe())
		recipes.learned["p1/recipe-sword"] = true
		svc, mock, playerItems := newCraftTestService(t, newFakePlayerRepo(), recipes)
		svc.roll = func() float64 { return 0.95 }
		mock.ExpectBegin()
		mock.ExpectCommit()

		stockMaterials(t, playerItems, "p1")

		result, err := svc.Craft(ctx, "p1", "recipe-sword")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Empty(t, result.ResultItemID)

		ore, err := playerItems.GetByPlayerAndItem(ctx, "p1", "ore")
		require.NoError(t, err)
		assert.Equal(t, 2, ore.Quantity, "制作失败材料照样消耗")
		_, err = playerItems.GetByPlayerAndItem(ctx, "p1", "sword")
		assert.Equal(t, sql.ErrNoRows, err, "失败不应产出成品")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("未学习配方拒绝制作", func(t *testing.T) {
		recipes := newFakeRecipeRepo(ironSwordRecipe())
		svc, mock, playerItems := newCraftTestService(t, newFakePlayerRepo(), recipes)
		stockMaterials(t, playerItems, "p1")

		_, err := svc.Craft(ctx, "p1", "recipe-sword")
		assert.Equal(t, xerrors.CodeRecipeNotLearned, xerrors.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("材料不足整体失败不扣减", func(t *testing.T) {
		recipes := newFakeRecipeRepo(ironSwordRecipe())
		recipes.learned["p1/recipe-sword"] = true
		svc, mock, playerItems := newCraftTestService(t, newFakePlayerRepo(), recipes)
		mock.ExpectBegin()
		mock.ExpectRollback()

		// 矿石只有 1 个，药水充足
		require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "ore", 1))
		require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "potion", 2))

		_, err := svc.Craft(ctx, "p1", "recipe-sword")
		assert.Equal(t, xerrors.CodeInsufficientMaterial, xerrors.CodeOf(err))

		ore, err := playerItems.GetByPlayerAndItem(ctx, "p1", "ore")
		require.NoError(t, err)
		assert.Equal(t, 1, ore.Quantity, "失败路径不应动库存")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("配方不存在", func(t *testing.T) {
		svc, _, _ := newCraftTestService(t, newFakePlayerRepo(), newFakeRecipeRepo())

		_, err := svc.Craft(ctx, "p1", "missing")
		assert.Equal(t, xerrors.CodeRecipeNotFound, xerrors.CodeOf(err))
	})
}

func TestCraftService_LearnRecipe(t *testing.T) {
	ctx := context.Background()

	t.Run("等级达标可学习", func(t *testing.T) {
		recipes := newFakeRecipeRepo(ironSwordRecipe())
		player := &entity.Player{ID: "p1", Name: "余烬", Level: 5}
		svc, _, _ := newCraftTestService(t, newFakePlayerRepo(player), recipes)

		require.NoError(t, svc.LearnRecipe(ctx, "p1", "recipe-sword"))
		learned, err := recipes.HasLearned(ctx, "p1", "recipe-sword")
		require.NoError(t, err)
		assert.True(t, learned)
	})

	t.Run("等级不足拒绝", func(t *testing.T) {
		recipes := newFakeRecipeRepo(ironSwordRecipe())
		player := &entity.Player{ID: "p1", Name: "余烬", Level: 1}
		svc, _, _ := newCraftTestService(t, newFakePlayerRepo(player), recipes)

		err := svc.LearnRecipe(ctx, "p1", "recipe-sword")
		assert.Equal(t, xerrors.CodeInsufficientLevel, xerrors.CodeOf(err))
	})

	t.Run("重复学习拒绝", func(t *testing.T) {
		recipes := newFakeRecipeRepo(ironSwordRecipe())
		recipes.learned["p1/recipe-sword"] = true
		player := &entity.Player{ID: "p1", Name: "余烬", Level: 5}
		svc, _, _ := newCraftTestService(t, newFakePlayerRepo(player), recipes)

		err := svc.LearnRecipe(ctx, "p1", "recipe-sword")
		assert.Equal(t, xerrors.CodeRecipeAlreadyKnown, xerrors.CodeOf(err))
	})
}
