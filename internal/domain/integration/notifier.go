package integration

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/order"
)

// Notification is one order event to deliver to an outbound channel
type Notification struct {
	EventID    string
	EventType  string
	OccurredAt time.Time
	Order      order.Snapshot
	// Previous status, set for status changes
	OldStatus order.Status
}

// NotificationFor builds the notification carried by an order event
func NotificationFor(event order.OrderEvent) Notification {
	n := Notification{
		EventID:    event.EventID().String(),
		EventType:  event.EventType(),
		OccurredAt: event.OccurredAt(),
		Order:      event.OrderSnapshot(),
	}
	if changed, ok := event.(*order.OrderStatusChangedEvent); ok {
		n.OldStatus = changed.OldStatus
	}
	return n
}

// WebhookSender delivers notifications to a generic HTTP endpoint
type WebhookSender interface {
	Send(ctx context.Context, cfg WebhookConfig, n Notification) error
}

// ChatwootSender delivers notifications to a Chatwoot inbox
type ChatwootSender interface {
	Send(ctx context.Context, cfg ChatwootConfig, n Notification) error
}

// Notifier names used in logs and test results
const (
	NotifierWebhook  = "webhook"
	NotifierChatwoot = "chatwoot"
	NotifierKafka    = "kafka"
)
