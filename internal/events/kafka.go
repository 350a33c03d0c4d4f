package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// KafkaPublisher publishes pricing events to a Kafka topic through an async
// producer. Delivery errors are logged, not returned: quote computation must
// never fail because the event bus is down.
type KafkaPublisher struct {
	producer sarama.AsyncProducer
	topic    string
	logger   *zap.Logger
	done     chan struct{}
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Return.Successes = false
	config.Producer.Return.Errors = true
	config.Producer.Retry.Max = 3

	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go p.drainErrors()

	return p, nil
}

func (p *KafkaPublisher) drainErrors() {
	defer close(p.done)
	for err := range p.producer.Errors() {
		p.logger.Error("Failed to deliver event",
			zap.String("topic", p.topic),
			zap.Error(err.Err))
	}
}

// Publish implements Publisher
func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Aggregate),
		Value: sarama.ByteEncoder(payload),
	}

	select {
	case p.producer.Input() <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending messages and stops the producer
func (p *KafkaPublisher) Close() error {
	err := p.producer.Close()
	<-p.done
	return err
}
