package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateTypeOrder names the order aggregate in events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderPaid          = "OrderPaid"
)

// NotifiableEventTypes are the order events forwarded to integrations
var NotifiableEventTypes = []string{
	EventTypeOrderCreated,
	EventTypeOrderStatusChanged,
	EventTypeOrderPaid,
}

// Snapshot is the order payload carried by events and sent to
// outbound integrations.
type Snapshot struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	Status         Status          `json:"status"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	CustomerName   string          `json:"customer_name"`
	CustomerEmail  string          `json:"customer_email"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	Currency       string          `json:"currency"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	Total          decimal.Decimal `json:"total"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	PartnerID      *uuid.UUID      `json:"partner_id,omitempty"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	Items          []SnapshotItem  `json:"items"`
}

// SnapshotItem is one line in a Snapshot
type SnapshotItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Snapshot captures the current state of the order
func (o *Order) Snapshot() Snapshot {
	items := make([]SnapshotItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = SnapshotItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}
	return Snapshot{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		PaymentStatus:  o.PaymentStatus,
		CustomerName:   o.Customer.Name,
		CustomerEmail:  o.Customer.Email,
		CustomerPhone:  o.Customer.Phone,
		Currency:       string(o.Currency),
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		ShippingAmount: o.ShippingAmount,
		Total:          o.Total,
		CouponCode:     o.CouponCode,
		PartnerID:      o.PartnerID,
		TrackingNumber: o.TrackingNumber,
		Items:          items,
	}
}

// OrderEvent is implemented by every order event so consumers can reach
// the order payload without a type switch.
type OrderEvent interface {
	shared.DomainEvent
	OrderSnapshot() Snapshot
}

// OrderCreatedEvent is raised when checkout places an order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	Order Snapshot `json:"order"`
}

// NewOrderCreatedEvent creates an OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		Order:           o.Snapshot(),
	}
}

func (e *OrderCreatedEvent) OrderSnapshot() Snapshot {
	return e.Order
}

// OrderStatusChangedEvent is raised on every fulfilment status change
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus Status   `json:"old_status"`
	NewStatus Status   `json:"new_status"`
	Reason    string   `json:"reason,omitempty"`
	Order     Snapshot `json:"order"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, oldStatus Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OldStatus:       oldStatus,
		NewStatus:       o.Status,
		Reason:          o.CancelReason,
		Order:           o.Snapshot(),
	}
}

func (e *OrderStatusChangedEvent) OrderSnapshot() Snapshot {
	return e.Order
}

// OrderPaidEvent is raised when payment for the order is confirmed
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	PaymentReference string   `json:"payment_reference,omitempty"`
	Order            Snapshot `json:"order"`
}

// NewOrderPaidEvent creates an OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		PaymentReference: o.PaymentReference,
		Order:            o.Snapshot(),
	}
}

func (e *OrderPaidEvent) OrderSnapshot() Snapshot {
	return e.Order
}
