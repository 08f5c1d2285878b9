package domain

import "context"

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishOptionPriced 发布期权定价完成事件
	PublishOptionPriced(ctx context.Context, event OptionPricedEvent) error

	// PublishVaRComputed 发布 VaR 估计完成事件
	PublishVaRComputed(ctx context.Context, event VaRComputedEvent) error

	// PublishConvergenceCompleted 发布收敛性研究完成事件
	PublishConvergenceCompleted(ctx context.Context, event ConvergenceCompletedEvent) error
}
