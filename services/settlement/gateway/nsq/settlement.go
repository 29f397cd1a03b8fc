package nsq

import (
	"context"

	"github.com/tigapay/offpay/internal/pkg/models"
	pkgnsq "github.com/tigapay/offpay/internal/pkg/nsq"
	"github.com/tigapay/offpay/internal/pkg/retry"
	"github.com/tigapay/offpay/services/settlement"
)

type settlementGW struct {
	producer *pkgnsq.Producer
	topic    string
	retrier  *retry.Retrier
}

// NewSettlementGW builds the NSQ-backed settlement gateway. Publishes retry
// with backoff since nsqd blips are transient and the event is post-commit.
func NewSettlementGW(producer *pkgnsq.Producer, topic string) settlement.SettlementGW {
	return &settlementGW{
		producer: producer,
		topic:    topic,
		retrier:  retry.New(retry.DefaultConfig()),
	}
}

// PublishSettlementCompleted emits the post-commit settlement event.
func (g *settlementGW) PublishSettlementCompleted(ctx context.Context, event *models.SettlementCompletedEvent) error {
	return g.retrier.Execute(ctx, func(context.Context) error {
		return g.producer.Publish(g.topic, event)
	})
}
