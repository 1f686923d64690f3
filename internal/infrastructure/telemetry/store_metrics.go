package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StoreMetrics turns order events into business counters. It subscribes to
// the event bus like any other handler.
type StoreMetrics struct {
	logger *zap.Logger

	ordersCreated  *Counter
	orderRevenue   *Counter
	itemsSold      *Counter
	ordersPaid     *Counter
	statusChanges  *Counter
	discountsGiven *Counter
}

// NewStoreMetrics creates the order instruments on meter
func NewStoreMetrics(meter metric.Meter, logger *zap.Logger) (*StoreMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &StoreMetrics{logger: logger}
	var err error
	if sm.ordersCreated, err = NewCounter(meter,
		"storefront_order_created_total", "Orders placed at checkout", "{orders}"); err != nil {
		return nil, err
	}
	if sm.orderRevenue, err = NewCounter(meter,
		"storefront_order_amount_total", "Order totals in minor currency units", "{cents}"); err != nil {
		return nil, err
	}
	if sm.itemsSold, err = NewCounter(meter,
		"storefront_order_items_total", "Units sold across placed orders", "{units}"); err != nil {
		return nil, err
	}
	if sm.ordersPaid, err = NewCounter(meter,
		"storefront_order_paid_total", "Orders whose payment was confirmed", "{orders}"); err != nil {
		return nil, err
	}
	if sm.statusChanges, err = NewCounter(meter,
		"storefront_order_status_changes_total", "Order status transitions by target status", "{transitions}"); err != nil {
		return nil, err
	}
	if sm.discountsGiven, err = NewCounter(meter,
		"storefront_order_discount_total", "Coupon discounts granted in minor currency units", "{cents}"); err != nil {
		return nil, err
	}
	return sm, nil
}

func (m *StoreMetrics) EventTypes() []string {
	return order.NotifiableEventTypes
}

// Handle never fails; unknown events are ignored
func (m *StoreMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderCreatedEvent:
		currency := AttrCurrency.String(e.Order.Currency)
		m.ordersCreated.Inc(ctx, currency)
		m.orderRevenue.Add(ctx, minorUnits(e.Order.Total), currency)
		if e.Order.DiscountAmount.IsPositive() {
			m.discountsGiven.Add(ctx, minorUnits(e.Order.DiscountAmount), currency)
		}
		var units int64
		for _, item := range e.Order.Items {
			units += int64(item.Quantity)
		}
		m.itemsSold.Add(ctx, units)
	case *order.OrderPaidEvent:
		m.ordersPaid.Inc(ctx, AttrCurrency.String(e.Order.Currency))
	case *order.OrderStatusChangedEvent:
		m.statusChanges.Inc(ctx, AttrOrderStatus.String(string(e.NewStatus)))
	default:
		m.logger.Debug("No metrics for event", zap.String("event_type", event.EventType()))
	}
	return nil
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

var _ shared.EventHandler = (*StoreMetrics)(nil)
