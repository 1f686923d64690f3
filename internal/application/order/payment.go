package order

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// ErrPaymentsDisabled is returned by the Stripe webhook when no gateway is configured
var ErrPaymentsDisabled = shared.NewDomainError("PAYMENTS_DISABLED", "Online payments are not enabled")

// ErrInvalidSignature is returned for webhook payloads that fail verification
var ErrInvalidSignature = shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")

// Payment event types understood by the webhook service
const (
	PaymentEventSucceeded = "payment_intent.succeeded"
	PaymentEventFailed    = "payment_intent.payment_failed"
)

// PaymentIntent is the provider-side payment created for an order
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

// PaymentEvent is a verified provider webhook event
type PaymentEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	// OrderID is the order_id metadata attached when the intent was created
	OrderID string
}

// PaymentGateway creates payments and verifies provider callbacks
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, o *order.Order) (*PaymentIntent, error)
	// ParseWebhook verifies the signature header and decodes the event.
	// Verification failures wrap ErrInvalidSignature.
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}
