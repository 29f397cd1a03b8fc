package nsq

import (
	"encoding/json"
	"fmt"

	"github.com/nsqio/go-nsq"
	"github.com/tigapay/offpay/internal/pkg/logger"
)

// Producer publishes JSON messages to NSQ topics.
type Producer struct {
	producer *nsq.Producer
}

// NewProducer connects a producer to an nsqd and verifies connectivity.
func NewProducer(address string) (*Producer, error) {
	config := nsq.NewConfig()
	producer, err := nsq.NewProducer(address, config)
	if err != nil {
		return nil, fmt.Errorf("create nsq producer: %w", err)
	}

	if err := producer.Ping(); err != nil {
		return nil, fmt.Errorf("ping nsqd at %s: %w", address, err)
	}

	return &Producer{producer: producer}, nil
}

// Publish marshals the message as JSON and sends it to the topic.
func (p *Producer) Publish(topic string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal nsq message: %w", err)
	}

	if err := p.producer.Publish(topic, body); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	logger.Debug("published nsq message",
		logger.String("topic", topic),
		logger.Int("bytes", len(body)))
	return nil
}

// Stop gracefully stops the producer.
func (p *Producer) Stop() {
	p.producer.Stop()
}
