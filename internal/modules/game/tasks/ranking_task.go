package tasks

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/log"
	"emberfall-server/internal/pkg/notify"
)

// RankingTask 排行榜定时任务
// 每五分钟全量重算积分并重新分配排名
type RankingTask struct {
	rankingService *service.RankingService
	logger         log.Logger
	cron           *cron.Cron
}

// NewRankingTask 创建排行榜任务实例
func NewRankingTask(rankingService *service.RankingService, logger log.Logger) *RankingTask {
	return &RankingTask{
		rankingService: rankingService,
		logger:         logger,
	}
}

// Start 启动定时任务
func (t *RankingTask) Start() {
	t.cron = cron.New(cron.WithSeconds())

	// Cron 表达式: 秒 分 时 日 月 周
	// "0 */5 * * * *" 表示每5分钟的第0秒执行
	_, err := t.cron.AddFunc("0 */5 * * * *", func() {
		t.logger.Info("【排行榜定时任务】开始重算排名")
		t.refreshRankings()
		t.logger.Info("【排行榜定时任务】排名重算完成")
	})

	if err != nil {
		t.logger.Error("【排行榜定时任务】添加排名重算任务失败", err)
		return
	}

	t.cron.Start()
	t.logger.Info("【排行榜定时任务】排名重算任务已启动 - 每5分钟执行一次")
}

// refreshRankings 全量重算积分并重新分配排名
func (t *RankingTask) refreshRankings() {
	ctx := context.Background()

	changed, err := t.rankingService.RecalculateAllScores(ctx)
	if err != nil {
		t.logger.Error("【排行榜定时任务】积分重算失败", err)
		return
	}

	events, err := t.rankingService.AssignRanks(ctx)
	if err != nil {
		t.logger.Error("【排行榜定时任务】排名分配失败", err)
		return
	}

	for _, event := range events {
		notify.PublishEvent(ctx, event.EventName(), event)
	}

	if changed > 0 || len(events) > 0 {
		t.logger.Info("【排行榜定时任务】排名更新成功",
			"scores_changed", changed,
			"ranks_changed", len(events),
			"timestamp", time.Now().Format("2006-01-02 15:04:05"))
	} else {
		t.logger.Debug("【排行榜定时任务】排名无变化")
	}
}

// Stop 停止定时任务（优雅关闭）
func (t *RankingTask) Stop() {
	if t.cron != nil {
		t.logger.Info("【排行榜定时任务】正在停止排名重算任务...")
		ctx := t.cron.Stop()
		<-ctx.Done()
		t.logger.Info("【排行榜定时任务】排名重算任务已停止")
	}
}
