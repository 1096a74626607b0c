package interfaces

import (
	"context"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"

	"emberfall-server/internal/repository/entity"
)

// DailyClaimRepository 每日奖励领取记录仓储接口
type DailyClaimRepository interface {
	// Create 创建领取记录
	Create(ctx context.Context, execer boil.ContextExecutor, claim *entity.DailyClaim) error

	// GetByPlayerAndDate 查询玩家某日的领取记录，不存在时返回 sql.ErrNoRows
	GetByPlayerAndDate(ctx context.Context, playerID string, date time.Time) (*entity.DailyClaim, error)

	// GetLatest 查询玩家最近一次领取记录，从未领取返回 sql.ErrNoRows
	GetLatest(ctx context.Context, playerID string) (*entity.DailyClaim, error)
}
