package interfaces

import (
	"context"
	"database/sql"

	"github.com/aarondl/sqlboiler/v4/boil"

	"emberfall-server/internal/repository/entity"
)

// PlayerRepository 玩家仓储接口
type PlayerRepository interface {
	// Create 创建玩家
	Create(ctx context.Context, execer boil.ContextExecutor, player *entity.Player) error

	// GetByID 根据ID获取玩家
	GetByID(ctx context.Context, playerID string) (*entity.Player, error)

	// GetByIDForUpdate 根据ID获取玩家（带行锁）
	GetByIDForUpdate(ctx context.Context, tx *sql.Tx, playerID string) (*entity.Player, error)

	// GetByName 根据名称获取玩家
	GetByName(ctx context.Context, name string) (*entity.Player, error)

	// Update 更新玩家信息
	Update(ctx context.Context, execer boil.ContextExecutor, player *entity.Player) error

	// Delete 删除玩家（软删除）
	Delete(ctx context.Context, playerID string) error

	// GetAllActive 获取全部未删除玩家（排名重算用，按 id 升序保证遍历顺序稳定）
	GetAllActive(ctx context.Context) ([]*entity.Player, error)

	// GetTopRanked 获取排名前 N 的玩家，排除尚未参与排名的玩家
	GetTopRanked(ctx context.Context, limit int) ([]*entity.Player, error)

	// UpdateScore 只写入积分列。排名重算用：不回写读取快照里的
	// 其他列，避免覆盖并发提交的战斗奖励
	UpdateScore(ctx context.Context, execer boil.ContextExecutor, playerID string, score int) error

	// UpdateRanks 批量写入排名（全量覆盖），同时刷新 last_rank_update
	UpdateRanks(ctx context.Context, execer boil.ContextExecutor, updates []RankUpdate) error

	// CheckExistsByName 检查玩家名称是否已存在
	CheckExistsByName(ctx context.Context, name string) (bool, error)
}

// RankUpdate 单个玩家的排名写入项
type RankUpdate struct {
	PlayerID string
	Rank     int
	Score    int
}
