package tasks

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/log"
)

// ListingExpireTask 挂单过期定时任务
// 每十分钟检查一次，将到期的挂单置为 'expired' 并退回托管物品
type ListingExpireTask struct {
	marketService *service.MarketService
	logger        log.Logger
	cron          *cron.Cron
}

// NewListingExpireTask 创建挂单过期任务实例
func NewListingExpireTask(marketService *service.MarketService, logger log.Logger) *ListingExpireTask {
	return &ListingExpireTask{
		marketService: marketService,
		logger:        logger,
	}
}

// Start 启动定时任务
func (t *ListingExpireTask) Start() {
	t.cron = cron.New(cron.WithSeconds())

	// "0 */10 * * * *" 表示每10分钟的第0秒执行
	_, err := t.cron.AddFunc("0 */10 * * * *", func() {
		t.logger.Info("【交易行定时任务】开始检查过期挂单")
		t.expireListings()
		t.logger.Info("【交易行定时任务】过期挂单检查完成")
	})

	if err != nil {
		t.logger.Error("【交易行定时任务】添加挂单过期任务失败", err)
		return
	}

	t.cron.Start()
	t.logger.Info("【交易行定时任务】挂单过期任务已启动 - 每10分钟执行一次")
}

// expireListings 过期到期挂单并退回物品
func (t *ListingExpireTask) expireListings() {
	ctx := context.Background()

	expiredCount, err := t.marketService.ExpireListings(ctx)
	if err != nil {
		t.logger.Error("【交易行定时任务】挂单过期失败", err)
		return
	}

	if expiredCount > 0 {
		t.logger.Info("【交易行定时任务】挂单过期成功",
			"expired_count", expiredCount,
			"timestamp", time.Now().Format("2006-01-02 15:04:05"))
	} else {
		t.logger.Debug("【交易行定时任务】没有需要过期的挂单")
	}
}

// Stop 停止定时任务（优雅关闭）
func (t *ListingExpireTask) Stop() {
	if t.cron != nil {
		t.logger.Info("【交易行定时任务】正在停止挂单过期任务...")
		ctx := t.cron.Stop()
		<-ctx.Done()
		t.logger.Info("【交易行定时任务】挂单过期任务已停止")
	}
}
