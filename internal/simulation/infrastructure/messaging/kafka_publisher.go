// Package messaging 将模拟领域事件发布到 Kafka
package messaging

import (
	"context"
	"strconv"

	"github.com/wyfcoding/risksim/internal/simulation/domain"
	"github.com/wyfcoding/risksim/pkg/mq"
)

// KafkaEventPublisher domain.EventPublisher 的 Kafka 实现。
// 主题按 <prefix>.<event_type> 命名，消息体为事件的 JSON 序列化。
type KafkaEventPublisher struct {
	producer    *mq.KafkaProducer
	topicPrefix string
}

// NewKafkaEventPublisher 创建事件发布器
func NewKafkaEventPublisher(producer *mq.KafkaProducer, topicPrefix string) *KafkaEventPublisher {
	if topicPrefix == "" {
		topicPrefix = "risksim"
	}
	return &KafkaEventPublisher{producer: producer, topicPrefix: topicPrefix}
}

// PublishOptionPriced 发布期权定价完成事件
func (p *KafkaEventPublisher) PublishOptionPriced(ctx context.Context, event domain.OptionPricedEvent) error {
	key := strconv.FormatFloat(event.Option.Strike, 'f', -1, 64)
	return p.producer.SendMessage(ctx, p.topic(domain.OptionPricedEventType), key, event)
}

// PublishVaRComputed 发布 VaR 估计完成事件
func (p *KafkaEventPublisher) PublishVaRComputed(ctx context.Context, event domain.VaRComputedEvent) error {
	key := strconv.FormatFloat(event.VaR.Percentile, 'f', -1, 64)
	return p.producer.SendMessage(ctx, p.topic(domain.VaRComputedEventType), key, event)
}

// PublishConvergenceCompleted 发布收敛性研究完成事件
func (p *KafkaEventPublisher) PublishConvergenceCompleted(ctx context.Context, event domain.ConvergenceCompletedEvent) error {
	key := strconv.FormatFloat(event.Option.Strike, 'f', -1, 64)
	return p.producer.SendMessage(ctx, p.topic(domain.ConvergenceCompletedEventType), key, event)
}

func (p *KafkaEventPublisher) topic(eventType string) string {
	return p.topicPrefix + "." + eventType
}
