package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const stripeEventKeyPrefix = "stripe:event:"

// StripeWebhookService applies Stripe payment events to orders
type StripeWebhookService struct {
	gateway     PaymentGateway
	orders      order.OrderRepository
	idempotency shared.IdempotencyStore
	events      shared.EventPublisher
	logger      *zap.Logger
}

// StripeWebhookServiceConfig contains the dependencies of StripeWebhookService.
// Gateway is nil when online payments are disabled.
type StripeWebhookServiceConfig struct {
	Gateway     PaymentGateway
	Orders      order.OrderRepository
	Idempotency shared.IdempotencyStore
	Events      shared.EventPublisher
	Logger      *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(cfg StripeWebhookServiceConfig) *StripeWebhookService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &StripeWebhookService{
		gateway:     cfg.Gateway,
		orders:      cfg.Orders,
		idempotency: cfg.Idempotency,
		events:      cfg.Events,
		logger:      cfg.Logger,
	}
}

// ProcessWebhook verifies and applies one Stripe event. Each event ID is
// acted upon once; redeliveries are acknowledged without changes. Errors
// are returned only when Stripe should retry.
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}

	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("Failed to verify webhook signature", zap.Error(err))
		return nil, err
	}

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: event.Type,
		Processed: true,
	}

	key := stripeEventKeyPrefix + event.ID
	if s.idempotency != nil {
		seen, err := s.idempotency.IsProcessed(ctx, key)
		if err != nil {
			s.logger.Warn("Idempotency check failed, processing event anyway",
				zap.String("event_id", event.ID),
				zap.Error(err))
		} else if seen {
			result.Processed = false
			result.Message = "Event already processed"
			return result, nil
		}
	}

	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type))

	switch event.Type {
	case PaymentEventSucceeded:
		err = s.handlePayment(ctx, event, result, true)
	case PaymentEventFailed:
		err = s.handlePayment(ctx, event, result, false)
	default:
		result.Message = "Event type not handled"
	}

	if err != nil {
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}

	if s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, key, shared.DefaultIdempotencyTTL); err != nil {
			s.logger.Warn("Failed to record processed webhook event",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
	return result, nil
}

func (s *StripeWebhookService) handlePayment(ctx context.Context, event *PaymentEvent, result *WebhookResult, succeeded bool) error {
	o, err := s.findOrder(ctx, event)
	if err != nil {
		if isNotFound(err) {
			// Acknowledge so Stripe stops retrying intents we did not create
			s.logger.Warn("No order for payment intent",
				zap.String("payment_intent_id", event.PaymentIntentID),
				zap.String("order_id", event.OrderID))
			result.Processed = false
			result.Message = "Order not found"
			return nil
		}
		return err
	}

	if succeeded {
		return s.markPaid(ctx, o, event, result)
	}
	return s.markFailed(ctx, o, event, result)
}

func (s *StripeWebhookService) markPaid(ctx context.Context, o *order.Order, event *PaymentEvent, result *WebhookResult) error {
	if o.PaymentStatus == order.PaymentStatusPaid {
		result.Message = "Order already paid"
		return nil
	}
	if err := o.MarkPaid(event.PaymentIntentID); err != nil {
		// a payment for a cancelled order needs a manual refund
		s.logger.Error("Payment received for order that cannot be paid",
			logger.OrderID(o.ID),
			logger.OrderNumber(o.OrderNumber),
			zap.String("status", string(o.Status)),
			zap.String("payment_intent_id", event.PaymentIntentID),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return nil
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return fmt.Errorf("failed to save paid order: %w", err)
	}

	s.logger.Info("Order paid",
		logger.OrderID(o.ID),
		logger.OrderNumber(o.OrderNumber),
		zap.String("payment_intent_id", event.PaymentIntentID))

	if s.events != nil {
		if err := s.events.Publish(ctx, o.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish order events",
				logger.OrderID(o.ID),
				zap.Error(err))
		}
		o.ClearDomainEvents()
	}
	return nil
}

func (s *StripeWebhookService) markFailed(ctx context.Context, o *order.Order, event *PaymentEvent, result *WebhookResult) error {
	if o.PaymentStatus == order.PaymentStatusPaid || o.PaymentStatus == order.PaymentStatusRefunded {
		result.Message = "Order already settled"
		return nil
	}
	if err := o.MarkPaymentFailed(); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return fmt.Errorf("failed to save order payment failure: %w", err)
	}

	s.logger.Info("Order payment failed",
		logger.OrderID(o.ID),
		logger.OrderNumber(o.OrderNumber),
		zap.String("payment_intent_id", event.PaymentIntentID))
	return nil
}

// findOrder matches the intent by stored reference, then by the order_id
// metadata for intents whose reference was never saved
func (s *StripeWebhookService) findOrder(ctx context.Context, event *PaymentEvent) (*order.Order, error) {
	if event.PaymentIntentID != "" {
		o, err := s.orders.FindByPaymentReference(ctx, event.PaymentIntentID)
		if err == nil {
			return o, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	if event.OrderID == "" {
		return nil, shared.ErrNotFound
	}
	id, err := uuid.Parse(event.OrderID)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	return s.orders.FindByID(ctx, id)
}
