package impl

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"

	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
)

const recipeColumns = `id, name, result_item_id, materials, success_rate, required_level, created_at, updated_at`

type recipeRepositoryImpl struct {
	db *sql.DB
}

// NewRecipeRepository 创建配方仓储实现
func NewRecipeRepository(db *sql.DB) interfaces.RecipeRepository {
	return &recipeRepositoryImpl{db: db}
}

func (r *recipeRepositoryImpl) GetByID(ctx context.Context, recipeID string) (*entity.Recipe, error) {
	var recipe entity.Recipe
	err := queries.Raw(
		`SELECT `+recipeColumns+` FROM recipes WHERE id = $1`,
		recipeID,
	).Bind(ctx, r.db, &recipe)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("查询配方失败: %w", err)
	}
	return &recipe, nil
}

func (r *recipeRepositoryImpl) GetAll(ctx context.Context) ([]*entity.Recipe, error) {
	var recipes []*entity.Recipe
	err := queries.Raw(
		`SELECT ` + recipeColumns + ` FROM recipes ORDER BY required_level, name`,
	).Bind(ctx, r.db, &recipes)
	if err != nil {
		return nil, fmt.Errorf("查询配方列表失败: %w", err)
	}
	return recipes, nil
}

func (r *recipeRepositoryImpl) GetLearned(ctx context.Context, playerID string) ([]*entity.PlayerRecipe, error) {
	var learned []*entity.PlayerRecipe
	err := queries.Raw(
		`SELECT id, player_id, recipe_id, created_at FROM player_recipes WHERE player_id = $1`,
		playerID,
	).Bind(ctx, r.db, &learned)
	if err != nil {
		return nil, fmt.Errorf("查询已学配方失败: %w", err)
	}
	return learned, nil
}

func (r *recipeRepositoryImpl) HasLearned(ctx context.Context, playerID, recipeID string) (bool, error) {
	var result struct {
		Count int64 `boil:"count"`
	}
	err := queries.Raw(
		`SELECT COUNT(*) AS count FROM player_recipes WHERE player_id = $1 AND recipe_id = $2`,
		playerID, recipeID,
	).Bind(ctx, r.db, &result)
	if err != nil {
		return false, fmt.Errorf("检查配方学习状态失败: %w", err)
	}
	return result.Count > 0, nil
}

func (r *recipeRepositoryImpl) Learn(ctx context.Context, execer boil.ContextExecutor, playerRecipe *entity.PlayerRecipe) error {
	playerRecipe.CreatedAt = time.Now()

	_, err := execer.ExecContext(ctx, `
		INSERT INTO player_recipes (id, player_id, recipe_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		playerRecipe.ID, playerRecipe.PlayerID, playerRecipe.RecipeID, playerRecipe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("记录配方学习失败: %w", err)
	}
	return nil
}
