package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	orders   *MockOrderRepository
	products *MockProductRepository
	rates    *MockRateRepository
	coupons  *MockCouponRepository
	carts    *MockCartSource
	payments *MockPaymentGateway
	events   *recordingPublisher

	mug      *catalog.Product
	standard *shipping.Rate
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	mug, err := catalog.NewProduct("Mug", "", decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	require.NoError(t, mug.SetSKU("MUG-1"))
	mug.StockQuantity = 10

	standard, err := shipping.NewRate("Standard", decimal.NewFromInt(5))
	require.NoError(t, err)
	threshold := decimal.NewFromInt(100)
	require.NoError(t, standard.SetFreeAbove(&threshold))

	return &checkoutFixture{
		orders:   new(MockOrderRepository),
		products: new(MockProductRepository),
		rates:    new(MockRateRepository),
		coupons:  new(MockCouponRepository),
		carts:    new(MockCartSource),
		payments: new(MockPaymentGateway),
		events:   &recordingPublisher{},
		mug:      mug,
		standard: standard,
	}
}

func (f *checkoutFixture) service(withPayments bool) *CheckoutService {
	cfg := CheckoutServiceConfig{
		Orders:    f.orders,
		Products:  f.products,
		Rates:     f.rates,
		Validator: promotion.NewValidator(f.coupons),
		Carts:     f.carts,
		Events:    f.events,
		Config:    CheckoutConfig{Currency: "USD", OrderNumberPrefix: "sf"},
	}
	if withPayments {
		cfg.Payments = f.payments
	}
	return NewCheckoutService(cfg)
}

func (f *checkoutFixture) request(items ...CheckoutItem) CheckoutRequest {
	return CheckoutRequest{
		Items:    items,
		Customer: CustomerInput{Name: "Ada Lovelace", Email: "Ada@Example.com"},
		ShippingAddress: AddressInput{
			Line1:      "1 Analytical Way",
			City:       "London",
			PostalCode: "N1 1AA",
			Country:    "gb",
		},
		ShippingRateID: f.standard.ID,
	}
}

func TestCheckoutService_PlaceOrderManual(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.products.On("FindByIDs", mock.Anything, []uuid.UUID{f.mug.ID}).Return([]catalog.Product{*f.mug}, nil)
	f.rates.On("FindByID", mock.Anything, f.standard.ID).Return(f.standard, nil)
	f.orders.On("Place", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	resp, err := f.service(false).PlaceOrder(ctx, f.request(
		CheckoutItem{ProductID: f.mug.ID, Quantity: 1},
		CheckoutItem{ProductID: f.mug.ID, Quantity: 2},
	))

	require.NoError(t, err)
	assert.False(t, resp.PaymentRequired)
	assert.Empty(t, resp.ClientSecret)
	assert.Regexp(t, `^SF-\d{8}-[A-Z2-9]{6}$`, resp.Order.OrderNumber)
	assert.Equal(t, "manual", resp.Order.PaymentMethod)
	assert.Equal(t, "pending", resp.Order.Status)
	assert.Equal(t, "unpaid", resp.Order.PaymentStatus)
	assert.Equal(t, "ada@example.com", resp.Order.CustomerEmail)
	assert.Equal(t, "GB", resp.Order.ShippingAddress.Country)
	require.Len(t, resp.Order.Items, 1, "lines for the same product are merged")
	assert.Equal(t, 3, resp.Order.Items[0].Quantity)
	assert.Equal(t, "MUG-1", resp.Order.Items[0].SKU)
	assert.True(t, resp.Order.Subtotal.Equal(decimal.RequireFromString("37.50")))
	assert.True(t, resp.Order.ShippingAmount.Equal(decimal.NewFromInt(5)))
	assert.True(t, resp.Order.Total.Equal(decimal.RequireFromString("42.50")))
	assert.Equal(t, []string{order.EventTypeOrderCreated}, f.events.types())
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "Discard", mock.Anything, mock.Anything)
}

func TestCheckoutService_PlaceOrderFromCartWithStripe(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	c := cart.New()
	require.NoError(t, c.Add(cart.Item{ProductID: f.mug.ID, Name: "Mug", UnitPrice: f.mug.Price, Quantity: 8}))
	c.SetCoupon("SAVE10")
	coupon, err := promotion.NewCoupon("SAVE10", promotion.DiscountTypePercent, decimal.NewFromInt(10))
	require.NoError(t, err)
	partnerID := uuid.New()
	coupon.AssignPartner(&partnerID)

	f.carts.On("Load", mock.Anything, c.ID).Return(c, nil)
	f.carts.On("Discard", mock.Anything, c.ID).Return(nil)
	f.products.On("FindByIDs", mock.Anything, []uuid.UUID{f.mug.ID}).Return([]catalog.Product{*f.mug}, nil)
	f.coupons.On("FindByCode", mock.Anything, "SAVE10").Return(coupon, nil)
	f.rates.On("FindByID", mock.Anything, f.standard.ID).Return(f.standard, nil)
	f.orders.On("Place", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	f.payments.On("CreatePaymentIntent", mock.Anything, mock.AnythingOfType("*order.Order")).
		Return(&PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil)
	f.orders.On("Save", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
		return o.PaymentReference == "pi_123"
	})).Return(nil)

	req := f.request()
	req.CartID = &c.ID
	resp, err := f.service(true).PlaceOrder(ctx, req)

	require.NoError(t, err)
	assert.True(t, resp.PaymentRequired)
	assert.Equal(t, "pi_123_secret", resp.ClientSecret)
	assert.Equal(t, "stripe", resp.Order.PaymentMethod)
	assert.Equal(t, "pi_123", resp.Order.PaymentReference)
	assert.Equal(t, "SAVE10", resp.Order.CouponCode)
	assert.Equal(t, &partnerID, resp.Order.PartnerID)
	// 8 x 12.50 = 100.00, 10% off, free shipping at 100
	assert.True(t, resp.Order.DiscountAmount.Equal(decimal.NewFromInt(10)))
	assert.True(t, resp.Order.ShippingAmount.IsZero())
	assert.True(t, resp.Order.Total.Equal(decimal.NewFromInt(90)))
	f.carts.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestCheckoutService_PaymentIntentFailureLeavesOrderUnpaid(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*f.mug}, nil)
	f.rates.On("FindByID", mock.Anything, f.standard.ID).Return(f.standard, nil)
	f.orders.On("Place", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	f.payments.On("CreatePaymentIntent", mock.Anything, mock.Anything).Return(nil, errors.New("stripe unavailable"))

	resp, err := f.service(true).PlaceOrder(ctx, f.request(CheckoutItem{ProductID: f.mug.ID, Quantity: 1}))

	require.NoError(t, err)
	assert.True(t, resp.PaymentRequired)
	assert.Empty(t, resp.ClientSecret)
	assert.Equal(t, "unpaid", resp.Order.PaymentStatus)
	assert.Empty(t, resp.Order.PaymentReference)
	f.payments.AssertNumberOfCalls(t, "CreatePaymentIntent", 1)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCheckoutService_ManualMethodSkipsStripe(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*f.mug}, nil)
	f.rates.On("FindByID", mock.Anything, f.standard.ID).Return(f.standard, nil)
	f.orders.On("Place", mock.Anything, mock.Anything).Return(nil)

	req := f.request(CheckoutItem{ProductID: f.mug.ID, Quantity: 1})
	req.PaymentMethod = "manual"
	resp, err := f.service(true).PlaceOrder(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "manual", resp.Order.PaymentMethod)
	f.payments.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
}

func TestCheckoutService_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *checkoutFixture, req *CheckoutRequest)
		wantCode string
	}{
		{
			name: "no items",
			setup: func(f *checkoutFixture, req *CheckoutRequest) {
				req.Items = nil
			},
			wantCode: "NO_ITEMS",
		},
		{
			name: "empty cart",
			setup: func(f *checkoutFixture, req *CheckoutRequest) {
				c := cart.New()
				req.CartID = &c.ID
				f.carts.On("Load", mock.Anything, c.ID).Return(c, nil)
			},
			wantCode: "CART_EMPTY",
		},
		{
			name: "missing product",
			setup: func(f *checkoutFixture, req *CheckoutRequest) {
				f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{}, nil)
			},
			wantCode: "PRODUCT_NOT_FOUND",
		},
		{
			name: "inactive product",
			setup: func(f *checkoutFixture, req *CheckoutRequest) {
				inactive := *f.mug
				inactive.Active = false
				f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{inactive}, nil)
			},
			wantCode: "PRODUCT_UNAVAILABLE",
		},
		{
			name: "insufficient stock",
			setup: func(f *checkoutFixture, req *CheckoutRequest) {
				req.Items[0].Quantity = 11
				f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*f.mug}, nil)
			},
			wantCode: "INSUFFICIENT_STOCK",
		},
		{
			name: "invalid coupon",
			setup: func(f *checkoutFixture, req *CheckoutRequest) {
				req.CouponCode = "nope"
				f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*f.mug}, nil)
				f.coupons.On("FindByCode", mock.Anything, "NOPE").Return(nil, shared.ErrNotFound)
			},
			wantCode: promotion.CodeCouponNotFound,
		},
		{
			name: "unknown shipping rate",
			setup: func(f *checkoutFixture, req *CheckoutRequest) {
				f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*f.mug}, nil)
				f.rates.On("FindByID", mock.Anything, f.standard.ID).Return(nil, shared.ErrNotFound)
			},
			wantCode: "SHIPPING_RATE_NOT_FOUND",
		},
		{
			name: "inactive shipping rate",
			setup: func(f *checkoutFixture, req *CheckoutRequest) {
				f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*f.mug}, nil)
				require.NoError(t, f.standard.Deactivate())
				f.rates.On("FindByID", mock.Anything, f.standard.ID).Return(f.standard, nil)
			},
			wantCode: "SHIPPING_RATE_UNAVAILABLE",
		},
		{
			name: "invalid email",
			setup: func(f *checkoutFixture, req *CheckoutRequest) {
				req.Customer.Email = "not-an-email"
			},
			wantCode: "INVALID_EMAIL",
		},
		{
			name: "stock taken concurrently",
			setup: func(f *checkoutFixture, req *CheckoutRequest) {
				f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*f.mug}, nil)
				f.rates.On("FindByID", mock.Anything, f.standard.ID).Return(f.standard, nil)
				f.orders.On("Place", mock.Anything, mock.Anything).Return(shared.ErrInsufficientStock)
			},
			wantCode: "INSUFFICIENT_STOCK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t)
			req := f.request(CheckoutItem{ProductID: f.mug.ID, Quantity: 1})
			tt.setup(f, &req)

			_, err := f.service(true).PlaceOrder(context.Background(), req)

			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
			assert.Empty(t, f.events.types())
			f.payments.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
		})
	}
}
