// Package messaging streams order events to Kafka for downstream consumers
// such as analytics and fulfilment systems.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEventMessage is the JSON value of every message on the topic
type OrderEventMessage struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	OccurredAt     time.Time      `json:"occurred_at"`
	PreviousStatus order.Status   `json:"previous_status,omitempty"`
	Order          order.Snapshot `json:"order"`
}

// OrderEventPublisher writes order events to a Kafka topic keyed by
// order ID, so every event of one order lands on the same partition.
// Failures are logged and never propagated.
type OrderEventPublisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *zap.Logger
}

// NewOrderEventPublisher creates a publisher writing to cfg.Topic
func NewOrderEventPublisher(cfg config.KafkaConfig, log *zap.Logger) *OrderEventPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           cfg.WriteTimeout,
	}
	return newOrderEventPublisher(writer, cfg.WriteTimeout, log)
}

func newOrderEventPublisher(writer messageWriter, timeout time.Duration, log *zap.Logger) *OrderEventPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OrderEventPublisher{writer: writer, timeout: timeout, logger: log.Named("kafka")}
}

// EventTypes returns the order events that are streamed
func (p *OrderEventPublisher) EventTypes() []string {
	return order.NotifiableEventTypes
}

// Handle writes event to the topic. It always returns nil.
func (p *OrderEventPublisher) Handle(ctx context.Context, event shared.DomainEvent) error {
	orderEvent, ok := event.(order.OrderEvent)
	if !ok {
		return nil
	}

	msg, err := encodeOrderEvent(orderEvent)
	if err != nil {
		p.logFailure(orderEvent, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logFailure(orderEvent, err)
		return nil
	}
	p.logger.Debug("order event streamed",
		logger.OrderID(orderEvent.OrderSnapshot().OrderID),
		logger.EventType(orderEvent.EventType()),
	)
	return nil
}

// Close flushes and closes the writer
func (p *OrderEventPublisher) Close() error {
	return p.writer.Close()
}

func (p *OrderEventPublisher) logFailure(event order.OrderEvent, err error) {
	p.logger.Warn("failed to stream order event",
		logger.OrderID(event.OrderSnapshot().OrderID),
		logger.EventType(event.EventType()),
		logger.Notifier(integration.NotifierKafka),
		zap.Error(err),
	)
}

func encodeOrderEvent(event order.OrderEvent) (kafka.Message, error) {
	payload := OrderEventMessage{
		ID:         event.EventID().String(),
		Type:       event.EventType(),
		OccurredAt: event.OccurredAt().UTC(),
		Order:      event.OrderSnapshot(),
	}
	if changed, ok := event.(*order.OrderStatusChangedEvent); ok {
		payload.PreviousStatus = changed.OldStatus
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode %s: %w", event.EventType(), err)
	}
	return kafka.Message{
		Key:   []byte(payload.Order.OrderID.String()),
		Value: value,
		Time:  payload.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(payload.Type)},
			{Key: "event_id", Value: []byte(payload.ID)},
		},
	}, nil
}

var _ shared.EventHandler = (*OrderEventPublisher)(nil)
