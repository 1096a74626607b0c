package interfaces

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"

	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/query"
)

// BattleRecordRepository 战斗记录仓储接口
type BattleRecordRepository interface {
	// Create 创建战斗记录
	Create(ctx context.Context, execer boil.ContextExecutor, record *entity.BattleRecord) error

	// GetByID 根据ID获取战斗记录
	GetByID(ctx context.Context, battleID string) (*entity.BattleRecord, error)

	// GetByPlayer 分页查询玩家参与的战斗记录（进攻方或防守方）
	GetByPlayer(ctx context.Context, params query.BattleHistoryParams) ([]*entity.BattleRecord, int64, error)

	// CountByPlayer 统计玩家参与的战斗场次
	CountByPlayer(ctx context.Context, playerID string) (int64, error)
}
