package integration

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const defaultNotifyTimeout = 10 * time.Second

// NotificationDispatcher forwards order events to the enabled outbound
// channels. Every delivery runs in its own goroutine with its own timeout,
// detached from the request that raised the event. Failures are logged
// and never returned.
type NotificationDispatcher struct {
	settings integration.SettingsRepository
	webhook  integration.WebhookSender
	chatwoot integration.ChatwootSender
	timeout  time.Duration
	logger   *zap.Logger

	wg sync.WaitGroup
}

// NewNotificationDispatcher creates a dispatcher
func NewNotificationDispatcher(
	settings integration.SettingsRepository,
	webhook integration.WebhookSender,
	chatwoot integration.ChatwootSender,
	timeout time.Duration,
	log *zap.Logger,
) *NotificationDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &NotificationDispatcher{
		settings: settings,
		webhook:  webhook,
		chatwoot: chatwoot,
		timeout:  timeout,
		logger:   log.Named("notify"),
	}
}

// EventTypes returns the order events that trigger notifications
func (d *NotificationDispatcher) EventTypes() []string {
	return order.NotifiableEventTypes
}

// Handle starts the deliveries for event and returns without waiting
func (d *NotificationDispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	orderEvent, ok := event.(order.OrderEvent)
	if !ok {
		return nil
	}
	n := integration.NotificationFor(orderEvent)

	settings, err := d.settings.Get(ctx)
	if err != nil {
		d.logger.Warn("failed to load integration settings, notifications skipped",
			logger.OrderID(n.Order.OrderID),
			logger.EventType(n.EventType),
			zap.Error(err),
		)
		return nil
	}

	if settings.WantsWebhook(n.EventType) {
		cfg := settings.Webhook()
		d.deliver(ctx, integration.NotifierWebhook, n, func(ctx context.Context) error {
			return d.webhook.Send(ctx, cfg, n)
		})
	}
	if settings.WantsChatwoot() {
		cfg := settings.Chatwoot()
		d.deliver(ctx, integration.NotifierChatwoot, n, func(ctx context.Context) error {
			return d.chatwoot.Send(ctx, cfg, n)
		})
	}
	return nil
}

func (d *NotificationDispatcher) deliver(ctx context.Context, notifier string, n integration.Notification, send func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notifier panicked",
					logger.OrderID(n.Order.OrderID),
					logger.EventType(n.EventType),
					logger.Notifier(notifier),
					zap.Any("panic", r),
				)
			}
		}()

		start := time.Now()
		if err := send(ctx); err != nil {
			d.logger.Warn("notification failed",
				logger.OrderID(n.Order.OrderID),
				logger.EventType(n.EventType),
				logger.Notifier(notifier),
				zap.Error(err),
			)
			return
		}
		d.logger.Debug("notification delivered",
			logger.OrderID(n.Order.OrderID),
			logger.EventType(n.EventType),
			logger.Notifier(notifier),
			zap.Duration("duration", time.Since(start)),
		)
	}()
}

// Wait blocks until in-flight deliveries finish or ctx is done
func (d *NotificationDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ shared.EventHandler = (*NotificationDispatcher)(nil)
