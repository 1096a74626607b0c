package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"

	"github.com/google/uuid"

	"emberfall-server/internal/pkg/log"
	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
)

// CraftService 制作服务。
// 配方消耗材料后按成功率掷骰，失败材料照样消耗。
type CraftService struct {
	db             *sql.DB
	playerRepo     interfaces.PlayerRepository
	playerItemRepo interfaces.PlayerItemRepository
	recipeRepo     interfaces.RecipeRepository
	inventory      *InventoryService
	metrics        *metrics.BusinessMetrics
	logger         log.Logger

	// roll 可注入以便测试固定成功率结果，返回值取 [0, 1)
	roll func() float64
}

// NewCraftService 创建制作服务
func NewCraftService(
	db *sql.DB,
	playerRepo interfaces.PlayerRepository,
	playerItemRepo interfaces.PlayerItemRepository,
	recipeRepo interfaces.RecipeRepository,
	inventory *InventoryService,
	bm *metrics.BusinessMetrics,
) *CraftService {
	return &CraftService{
		db:             db,
		playerRepo:     playerRepo,
		playerItemRepo: playerItemRepo,
		recipeRepo:     recipeRepo,
		inventory:      inventory,
		metrics:        bm,
		logger:         log.GetLogger(),
		roll:           rand.Float64,
	}
}

// CraftResult 制作结果
type CraftResult struct {
	Success      bool   `json:"success"`
	RecipeID     string `json:"recipe_id"`
	ResultItemID string `json:"result_item_id,omitempty"`
}

// LearnRecipe 学习配方
func (s *CraftService) LearnRecipe(ctx context.Context, playerID, recipeID string) error {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return xerrors.NewRecipeNotFoundError(recipeID)
		}
		return xerrors.NewDatabaseError("get_recipe", "recipes", err)
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return xerrors.NewPlayerNotFoundError(playerID)
		}
		return xerrors.NewDatabaseError("get_player", "players", err)
	}
	if player.Level < recipe.RequiredLevel {
		return xerrors.FromCode(xerrors.CodeInsufficientLevel).
			WithMetadata("required_level", recipe.RequiredLevel).
			WithMetadata("current_level", player.Level)
	}

	learned, err := s.recipeRepo.HasLearned(ctx, playerID, recipeID)
	if err != nil {
		return xerrors.NewDatabaseError("check_learned", "player_recipes", err)
	}
	if learned {
		return xerrors.FromCode(xerrors.CodeRecipeAlreadyKnown).
			WithMetadata("recipe_id", recipeID)
	}

	err = s.recipeRepo.Learn(ctx, s.db, &entity.PlayerRecipe{
		ID:       uuid.New().String(),
		PlayerID: playerID,
		RecipeID: recipeID,
	})
	if err != nil {
		return xerrors.NewPersistenceError("learn_recipe", err)
	}
	return nil
}

// Craft 按配方制作物品。材料扣减、成功产出与失败消耗
// 都在同一事务内提交，提交后失效背包缓存。
func (s *CraftService) Craft(ctx context.Context, playerID, recipeID string) (*CraftResult, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewRecipeNotFoundError(recipeID)
		}
		return nil, xerrors.NewDatabaseError("get_recipe", "recipes", err)
	}

	learned, err := s.recipeRepo.HasLearned(ctx, playerID, recipeID)
	if err != nil {
		return nil, xerrors.NewDatabaseError("check_learned", "player_recipes", err)
	}
	if !learned {
		return nil, xerrors.FromCode(xerrors.CodeRecipeNotLearned).
			WithMetadata("recipe_id", recipeID)
	}

	var materials []entity.RecipeMaterial
	if err := json.Unmarshal(recipe.Materials, &materials); err != nil {
		return nil, xerrors.NewWithError(xerrors.CodeInternalError, "配方材料解析失败", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, xerrors.NewPersistenceError("begin_craft_tx", err)
	}
	defer tx.Rollback()

	// 先锁材料再扣减，任何一种不足整个制作失败
	for _, material := range materials {
		owned, err := s.playerItemRepo.GetByPlayerAndItemForUpdate(ctx, tx, playerID, material.ItemID)
		if err != nil || owned.Quantity < material.Quantity {
			if err != nil && err != sql.ErrNoRows {
				return nil, xerrors.NewDatabaseError("get_material", "player_items", err)
			}
			return nil, xerrors.FromCode(xerrors.CodeInsufficientMaterial).
				WithMetadata("item_id", material.ItemID).
				WithMetadata("required", material.Quantity)
		}
	}
	for _, material := range materials {
		if err := s.playerItemRepo.RemoveQuantity(ctx, tx, playerID, material.ItemID, material.Quantity); err != nil {
			return nil, xerrors.NewPersistenceError("consume_material", err)
		}
	}

	success := s.roll() < recipe.SuccessRate
	if success {
		if err := s.playerItemRepo.AddQuantity(ctx, tx, playerID, recipe.ResultItemID, 1); err != nil {
			return nil, xerrors.NewPersistenceError("grant_result_item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, xerrors.NewPersistenceError("commit_craft_tx", err)
	}

	invalidated := make([]string, 0, len(materials)+1)
	for _, material := range materials {
		invalidated = append(invalidated, material.ItemID)
	}
	invalidated = append(invalidated, recipe.ResultItemID)
	s.inventory.Invalidate(ctx, playerID, invalidated...)

	s.metrics.RecordCraftAttempt(success, serviceName)
	s.logger.InfoContext(ctx, "制作完成",
		log.String("player_id", playerID),
		log.String("recipe_id", recipeID),
		log.Bool("success", success),
	)

	result := &CraftResult{Success: success, RecipeID: recipeID}
	if success {
		result.ResultItemID = recipe.ResultItemID
	}
	return result, nil
}

// ListRecipes 查询全部配方及玩家学习状态
func (s *CraftService) ListRecipes(ctx context.Context, playerID string) ([]*RecipeView, error) {
	recipes, err := s.recipeRepo.GetAll(ctx)
	if err != nil {
		return nil, xerrors.NewDatabaseError("get_recipes", "recipes", err)
	}

	learned, err := s.recipeRepo.GetLearned(ctx, playerID)
	if err != nil {
		return nil, xerrors.NewDatabaseError("get_learned", "player_recipes", err)
	}
	learnedSet := make(map[string]bool, len(learned))
	for _, pr := range learned {
		learnedSet[pr.RecipeID] = true
	}

	views := make([]*RecipeView, 0, len(recipes))
	for _, recipe := range recipes {
		views = append(views, &RecipeView{
			Recipe:  recipe,
			Learned: learnedSet[recipe.ID],
		})
	}
	return views, nil
}

// RecipeView 配方视图（含玩家学习状态）
type RecipeView struct {
	Recipe  *entity.Recipe `json:"recipe"`
	Learned bool           `json:"learned"`
}
