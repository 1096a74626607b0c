package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

var (
	ncMu sync.RWMutex
	nc   *nats.Conn
)

// SetNatsConn 设置全局 NATS 连接（由 main 提供）
func SetNatsConn(conn *nats.Conn) {
	ncMu.Lock()
	defer ncMu.Unlock()
	nc = conn
}

// PublishEvent 发布领域事件
// 核心逻辑只返回事件列表，由服务层在落库成功后统一调用本函数分发。
func PublishEvent(ctx context.Context, subject string, payload interface{}) error {
	ncMu.RLock()
	conn := nc
	ncMu.RUnlock()
	if conn == nil {
		return nil // 没有连接时静默降级
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal domain event failed: %w", err)
	}
	return conn.Publish(subject, data)
}

// Default subjects
const (
	SubjectBattleCompleted = "battle.completed"
	SubjectPlayerLevelUp   = "player.levelup"
	SubjectRankingChanged  = "ranking.changed"
	SubjectMarketTrade     = "market.trade"
	SubjectDailyClaimed    = "daily.claimed"
)
