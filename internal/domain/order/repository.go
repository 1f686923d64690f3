package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository persists orders.
//
// Supported filter keys: "status" (Status), "payment_status" (PaymentStatus),
// "from" and "to" (time.Time, on created_at). Filter.Search matches order
// number, customer email and customer name.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindByPaymentReference(ctx context.Context, ref string) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Place stores a new order atomically with its side effects on stock and
	// coupon usage: each product's stock is decremented only if enough
	// remains, and the coupon (if any) is redeemed only while under its
	// usage limit. If any step fails nothing is written.
	Place(ctx context.Context, order *Order) error

	// Save updates order fields (not items) with optimistic locking
	Save(ctx context.Context, order *Order) error

	// SaveCancelled saves a cancelled order, returns its quantities to
	// product stock and gives back its coupon redemption, all in one
	// transaction.
	SaveCancelled(ctx context.Context, order *Order) error

	// Stats aggregates order counts and revenue created in [from, to)
	Stats(ctx context.Context, from, to *time.Time) (*Stats, error)
}

// Stats summarizes orders for the dashboard
type Stats struct {
	TotalOrders     int64                      `json:"total_orders"`
	ByStatus        map[Status]int64           `json:"by_status"`
	RevenueByStatus map[Status]decimal.Decimal `json:"revenue_by_status"`
	PaidRevenue     decimal.Decimal            `json:"paid_revenue"`
	PaidOrders      int64                      `json:"paid_orders"`
}
