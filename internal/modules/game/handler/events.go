package handler

import (
	"context"

	"emberfall-server/internal/modules/game/combat"
	"emberfall-server/internal/pkg/notify"
)

// dispatchEvents 分发核心逻辑返回的领域事件。
// 核心只负责返回事件，分发是调用方（handler 层）的职责，
// 通知失败静默降级，不影响主流程。
func dispatchEvents(ctx context.Context, events []combat.DomainEvent) {
	for _, event := range events {
		notify.PublishEvent(ctx, event.EventName(), event)
	}
}
