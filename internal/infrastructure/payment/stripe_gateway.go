// Package payment connects checkout to Stripe.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

var _ orderapp.PaymentGateway = (*StripeGateway)(nil)

// StripeGateway creates PaymentIntents for orders and verifies Stripe
// webhook deliveries.
type StripeGateway struct {
	intents       paymentintent.Client
	webhookSecret string
	logger        *zap.Logger
}

// StripeGatewayOption configures StripeGateway
type StripeGatewayOption func(*StripeGateway)

// WithBackend replaces the Stripe API backend, e.g. to point at a test server
func WithBackend(backend stripe.Backend) StripeGatewayOption {
	return func(g *StripeGateway) {
		g.intents.B = backend
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) StripeGatewayOption {
	return func(g *StripeGateway) {
		g.logger = logger
	}
}

// NewStripeGateway creates a gateway from configuration. The API key is
// scoped to this client instead of the package-level stripe.Key.
func NewStripeGateway(cfg config.StripeConfig, opts ...StripeGatewayOption) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("stripe: webhook secret is required")
	}

	g := &StripeGateway{
		intents: paymentintent.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: cfg.SecretKey,
		},
		webhookSecret: cfg.WebhookSecret,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// CreatePaymentIntent charges the order total in its minor currency unit.
// The order id doubles as the idempotency key so a retried checkout never
// creates two intents for the same order.
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, o *order.Order) (*orderapp.PaymentIntent, error) {
	amount := o.TotalMoney().MinorUnits()
	if amount <= 0 {
		return nil, fmt.Errorf("stripe: order %s has nothing to charge", o.OrderNumber)
	}

	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(amount),
		Currency:     stripe.String(strings.ToLower(string(o.Currency))),
		Description:  stripe.String("Order " + o.OrderNumber),
		ReceiptEmail: stripe.String(o.Customer.Email),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", o.ID.String())
	params.AddMetadata("order_number", o.OrderNumber)
	params.SetIdempotencyKey("order-" + o.ID.String())

	pi, err := g.intents.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe payment intent",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	g.logger.Info("Created Stripe payment intent",
		zap.String("order_number", o.OrderNumber),
		zap.String("payment_intent_id", pi.ID))

	return &orderapp.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the
// PaymentIntent the event refers to. Events for other objects come back
// without a PaymentIntentID.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*orderapp.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", orderapp.ErrInvalidSignature, err)
	}

	result := &orderapp.PaymentEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}
	if event.Data == nil || !strings.HasPrefix(result.Type, "payment_intent.") {
		return result, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripe: failed to decode payment intent: %w", err)
	}
	result.PaymentIntentID = pi.ID
	result.OrderID = pi.Metadata["order_id"]
	return result, nil
}
