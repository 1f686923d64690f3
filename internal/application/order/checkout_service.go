package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CartSource is the part of the cart service checkout needs
type CartSource interface {
	// Load returns the cart with lines refreshed from the catalog
	Load(ctx context.Context, id uuid.UUID) (*cart.Cart, error)
	Discard(ctx context.Context, id uuid.UUID) error
}

// CheckoutConfig holds store-wide checkout settings
type CheckoutConfig struct {
	Currency          valueobject.Currency
	OrderNumberPrefix string
}

// CheckoutService turns carts into orders
type CheckoutService struct {
	orders    order.OrderRepository
	products  catalog.ProductRepository
	rates     shipping.RateRepository
	validator *promotion.Validator
	carts     CartSource
	payments  PaymentGateway
	events    shared.EventPublisher
	cfg       CheckoutConfig
	logger    *zap.Logger
	now       func() time.Time
}

// CheckoutServiceConfig contains the dependencies of CheckoutService.
// Payments is nil when online payments are disabled.
type CheckoutServiceConfig struct {
	Orders    order.OrderRepository
	Products  catalog.ProductRepository
	Rates     shipping.RateRepository
	Validator *promotion.Validator
	Carts     CartSource
	Payments  PaymentGateway
	Events    shared.EventPublisher
	Config    CheckoutConfig
	Logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cfg CheckoutServiceConfig) *CheckoutService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Config.Currency == "" {
		cfg.Config.Currency = valueobject.DefaultCurrency
	}
	return &CheckoutService{
		orders:    cfg.Orders,
		products:  cfg.Products,
		rates:     cfg.Rates,
		validator: cfg.Validator,
		carts:     cfg.Carts,
		payments:  cfg.Payments,
		events:    cfg.Events,
		cfg:       cfg.Config,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

type checkoutLine struct {
	productID uuid.UUID
	quantity  int
}

// PlaceOrder validates the request against the live catalog, persists the
// order together with its stock and coupon side effects, and then starts
// the payment. A failed payment intent leaves the order placed and unpaid.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req CheckoutRequest) (resp *CheckoutResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place_order")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if req.CartID != nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrCartID, req.CartID.String())
	}
	lines, couponCode, err := s.resolveLines(ctx, req)
	if err != nil {
		return nil, err
	}

	customer, err := order.NewCustomer(req.Customer.Name, req.Customer.Email, req.Customer.Phone)
	if err != nil {
		return nil, err
	}
	address, err := valueobject.NewAddress(req.ShippingAddress.Line1, req.ShippingAddress.Line2,
		req.ShippingAddress.City, req.ShippingAddress.State, req.ShippingAddress.PostalCode, req.ShippingAddress.Country)
	if err != nil {
		return nil, shared.NewDomainErrorWithCause("INVALID_ADDRESS", err.Error(), err)
	}

	method := order.PaymentMethodManual
	if s.payments != nil && req.PaymentMethod != string(order.PaymentMethodManual) {
		method = order.PaymentMethodStripe
	}

	o, err := order.NewOrder(order.GenerateOrderNumber(s.cfg.OrderNumberPrefix, s.now()), customer, address, s.cfg.Currency, method)
	if err != nil {
		return nil, err
	}
	if err := s.addItems(ctx, o, lines); err != nil {
		return nil, err
	}

	if couponCode != "" {
		discount, _, err := s.validator.Validate(ctx, couponCode, o.Subtotal)
		if err != nil {
			return nil, err
		}
		if err := o.ApplyDiscount(discount); err != nil {
			return nil, err
		}
	}

	if err := s.applyShipping(ctx, o, req.ShippingRateID); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		o.SetNotes(req.Notes)
	}

	if err := o.Place(); err != nil {
		return nil, err
	}
	if err := s.orders.Place(ctx, o); err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, o.ID.String(),
		telemetry.SpanAttrOrderNumber, o.OrderNumber,
		telemetry.SpanAttrItemCount, o.ItemCount(),
		telemetry.SpanAttrCouponCode, o.CouponCode,
	)

	s.logger.Info("Order placed",
		logger.OrderID(o.ID),
		logger.OrderNumber(o.OrderNumber),
		zap.String("total", o.Total.StringFixed(2)),
		zap.String("payment_method", string(o.PaymentMethod)),
	)

	clientSecret := ""
	if o.PaymentMethod == order.PaymentMethodStripe {
		clientSecret = s.startPayment(ctx, o)
	}

	if req.CartID != nil {
		if err := s.carts.Discard(ctx, *req.CartID); err != nil {
			s.logger.Warn("Failed to discard cart after checkout",
				zap.String("cart_id", req.CartID.String()),
				logger.OrderID(o.ID),
				zap.Error(err),
			)
		}
	}

	s.publish(ctx, o)

	return &CheckoutResponse{
		Order:           ToOrderResponse(o),
		PaymentRequired: o.PaymentMethod == order.PaymentMethodStripe,
		ClientSecret:    clientSecret,
	}, nil
}

// resolveLines returns the requested products and quantities, taken from
// the cart when one is given. Explicit lines for the same product are merged.
func (s *CheckoutService) resolveLines(ctx context.Context, req CheckoutRequest) ([]checkoutLine, string, error) {
	couponCode := req.CouponCode

	if req.CartID != nil {
		if s.carts == nil {
			return nil, "", shared.NewDomainError("CART_NOT_FOUND", "Cart not found or expired")
		}
		c, err := s.carts.Load(ctx, *req.CartID)
		if err != nil {
			return nil, "", err
		}
		if c.IsEmpty() {
			return nil, "", shared.NewDomainError("CART_EMPTY", "Cart is empty")
		}
		lines := make([]checkoutLine, len(c.Items))
		for i, item := range c.Items {
			lines[i] = checkoutLine{productID: item.ProductID, quantity: item.Quantity}
		}
		if couponCode == "" {
			couponCode = c.CouponCode
		}
		return lines, couponCode, nil
	}

	if len(req.Items) == 0 {
		return nil, "", shared.NewDomainError("NO_ITEMS", "Cannot place an order without items")
	}
	index := make(map[uuid.UUID]int, len(req.Items))
	lines := make([]checkoutLine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, "", shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if i, ok := index[item.ProductID]; ok {
			lines[i].quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, checkoutLine{productID: item.ProductID, quantity: item.Quantity})
	}
	return lines, couponCode, nil
}

// addItems prices every line from the catalog. Missing, inactive and
// out-of-stock products reject the whole checkout.
func (s *CheckoutService) addItems(ctx context.Context, o *order.Order, lines []checkoutLine) error {
	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.productID
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}

	for _, line := range lines {
		p, ok := products[line.productID]
		if !ok {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product "+line.productID.String()+" no longer exists")
		}
		if err := p.CheckPurchasable(line.quantity); err != nil {
			return err
		}
		if err := o.AddItem(p.ID, p.Name, p.SKUValue(), p.Price, line.quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *CheckoutService) applyShipping(ctx context.Context, o *order.Order, rateID uuid.UUID) error {
	rate, err := s.rates.FindByID(ctx, rateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("SHIPPING_RATE_NOT_FOUND", "Shipping rate not found")
		}
		return err
	}
	cost, err := rate.Quote(o.Subtotal)
	if err != nil {
		return err
	}
	return o.SetShipping(rate.ID, rate.Name, cost)
}

// startPayment creates the PaymentIntent once. Failures are logged and the
// order stays unpaid without a client secret.
func (s *CheckoutService) startPayment(ctx context.Context, o *order.Order) string {
	intent, err := s.payments.CreatePaymentIntent(ctx, o)
	if err != nil {
		s.logger.Warn("Failed to create payment intent, order left unpaid",
			logger.OrderID(o.ID),
			logger.OrderNumber(o.OrderNumber),
			zap.Error(err),
		)
		return ""
	}

	o.SetPaymentReference(intent.ID)
	if err := s.orders.Save(ctx, o); err != nil {
		s.logger.Error("Failed to store payment reference",
			logger.OrderID(o.ID),
			zap.String("payment_intent_id", intent.ID),
			zap.Error(err),
		)
	}
	return intent.ClientSecret
}

func (s *CheckoutService) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	if len(events) == 0 || s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events",
			logger.OrderID(o.ID),
			zap.Error(err),
		)
	}
	o.ClearDomainEvents()
}
