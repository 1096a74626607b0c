package interfaces

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"

	"emberfall-server/internal/repository/entity"
)

// RecipeRepository 配方仓储接口
type RecipeRepository interface {
	// GetByID 根据ID获取配方
	GetByID(ctx context.Context, recipeID string) (*entity.Recipe, error)

	// GetAll 获取全部配方
	GetAll(ctx context.Context) ([]*entity.Recipe, error)

	// GetLearned 查询玩家已学配方
	GetLearned(ctx context.Context, playerID string) ([]*entity.PlayerRecipe, error)

	// HasLearned 检查玩家是否已学习配方
	HasLearned(ctx context.Context, playerID, recipeID string) (bool, error)

	// Learn 记录玩家学习配方
	Learn(ctx context.Context, execer boil.ContextExecutor, playerRecipe *entity.PlayerRecipe) error
}
