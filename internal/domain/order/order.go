package order

import (
	"crypto/rand"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Customer identifies who placed an order
type Customer struct {
	Name  string `gorm:"column:customer_name;type:varchar(200);not null"`
	Email string `gorm:"column:customer_email;type:varchar(200);not null;index"`
	Phone string `gorm:"column:customer_phone;type:varchar(50)"`
}

// NewCustomer validates and normalizes customer details
func NewCustomer(name, email, phone string) (Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return Customer{}, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name must be between 1 and 200 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return Customer{}, shared.NewDomainError("INVALID_EMAIL", "Customer email is not valid")
	}
	return Customer{Name: name, Email: email, Phone: strings.TrimSpace(phone)}, nil
}

// Order is a placed storefront order
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber      string               `gorm:"type:varchar(40);not null;uniqueIndex"`
	Customer         Customer             `gorm:"embedded"`
	ShippingAddress  valueobject.Address  `gorm:"embedded;embeddedPrefix:shipping_"`
	Items            []Item               `gorm:"foreignKey:OrderID"`
	Currency         valueobject.Currency `gorm:"type:varchar(3);not null"`
	Subtotal         decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	DiscountAmount   decimal.Decimal      `gorm:"type:decimal(12,2);not null;default:0"`
	ShippingAmount   decimal.Decimal      `gorm:"type:decimal(12,2);not null;default:0"`
	Total            decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	CouponID         *uuid.UUID           `gorm:"type:uuid;index"`
	CouponCode       string               `gorm:"type:varchar(50)"`
	PartnerID        *uuid.UUID           `gorm:"type:uuid;index"`
	ShippingRateID   *uuid.UUID           `gorm:"type:uuid"`
	ShippingRateName string               `gorm:"type:varchar(100)"`
	Status           Status               `gorm:"type:varchar(20);not null;index"`
	PaymentStatus    PaymentStatus        `gorm:"type:varchar(20);not null"`
	PaymentMethod    PaymentMethod        `gorm:"type:varchar(20);not null"`
	PaymentReference string               `gorm:"type:varchar(100);index"`
	TrackingNumber   string               `gorm:"type:varchar(100)"`
	Notes            string               `gorm:"type:text"`
	CancelReason     string               `gorm:"type:varchar(500)"`
	PaidAt           *time.Time
	ShippedAt        *time.Time
	DeliveredAt      *time.Time
	CancelledAt      *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending, unpaid order without items
func NewOrder(orderNumber string, customer Customer, address valueobject.Address, currency valueobject.Currency, method PaymentMethod) (*Order, error) {
	if orderNumber == "" || len(orderNumber) > 40 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number must be between 1 and 40 characters")
	}
	if err := address.Validate(); err != nil {
		return nil, shared.NewDomainErrorWithCause("INVALID_ADDRESS", err.Error(), err)
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency is required")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be stripe or manual")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Customer:          customer,
		ShippingAddress:   address,
		Items:             make([]Item, 0),
		Currency:          currency,
		Subtotal:          decimal.Zero,
		DiscountAmount:    decimal.Zero,
		ShippingAmount:    decimal.Zero,
		Total:             decimal.Zero,
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusUnpaid,
		PaymentMethod:     method,
	}, nil
}

// AddItem appends a line. Each product may appear once.
func (o *Order) AddItem(productID uuid.UUID, productName, sku string, unitPrice decimal.Decimal, quantity int) error {
	if o.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Items can only be added to a pending order")
	}
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order")
		}
	}

	item, err := NewItem(productID, productName, sku, unitPrice, quantity)
	if err != nil {
		return err
	}
	item.OrderID = o.ID
	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	return nil
}

// ApplyDiscount records the single coupon applied to the order.
// The discount is capped at the subtotal.
func (o *Order) ApplyDiscount(d *promotion.Discount) error {
	if d == nil {
		return nil
	}
	if d.Amount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if o.CouponID != nil {
		return shared.NewDomainError("COUPON_ALREADY_APPLIED", "Only one coupon can be applied to an order")
	}

	couponID := d.CouponID
	o.CouponID = &couponID
	o.CouponCode = d.Code
	o.PartnerID = d.PartnerID
	o.DiscountAmount = d.Amount
	o.recalculateTotals()
	return nil
}

// SetShipping records the chosen shipping rate and its quoted cost
func (o *Order) SetShipping(rateID uuid.UUID, rateName string, cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_SHIPPING", "Shipping cost cannot be negative")
	}
	o.ShippingRateID = &rateID
	o.ShippingRateName = rateName
	o.ShippingAmount = cost.Round(2)
	o.recalculateTotals()
	return nil
}

// SetNotes replaces the merchant notes
func (o *Order) SetNotes(notes string) {
	o.Notes = strings.TrimSpace(notes)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// SetPaymentReference stores the payment provider reference (PaymentIntent id)
func (o *Order) SetPaymentReference(ref string) {
	o.PaymentReference = ref
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Place finalizes a newly built order and raises OrderCreated
func (o *Order) Place() error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot place an order without items")
	}
	if o.Total.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Order total cannot be negative")
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return nil
}

// TransitionTo moves the order to target following the status machine.
// Shipping takes an optional tracking number; cancelling requires a reason.
func (o *Order) TransitionTo(target Status, trackingNumber, reason string) error {
	if err := o.transition(target, trackingNumber, reason, time.Now()); err != nil {
		return err
	}
	o.IncrementVersion()
	return nil
}

func (o *Order) transition(target Status, trackingNumber, reason string, now time.Time) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change order from %s to %s", o.Status, target))
	}

	switch target {
	case StatusShipped:
		o.TrackingNumber = strings.TrimSpace(trackingNumber)
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
		}
		o.CancelReason = reason
		o.CancelledAt = &now
	}

	old := o.Status
	o.Status = target
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}

// Cancel is TransitionTo(StatusCancelled)
func (o *Order) Cancel(reason string) error {
	return o.TransitionTo(StatusCancelled, "", reason)
}

// MarkPaid records a successful payment. A pending order moves to
// processing at the same time. Marking an already paid order is a no-op.
func (o *Order) MarkPaid(reference string) error {
	if o.PaymentStatus == PaymentStatusPaid {
		return nil
	}
	if o.PaymentStatus != PaymentStatusUnpaid && o.PaymentStatus != PaymentStatusFailed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark %s order as paid", o.PaymentStatus))
	}
	if o.Status == StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a cancelled order as paid")
	}

	now := time.Now()
	o.PaymentStatus = PaymentStatusPaid
	o.PaidAt = &now
	if reference != "" {
		o.PaymentReference = reference
	}
	o.UpdatedAt = now

	if o.Status == StatusPending {
		if err := o.transition(StatusProcessing, "", "", now); err != nil {
			return err
		}
	}
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderPaidEvent(o))
	return nil
}

// MarkPaymentFailed records a failed payment attempt on an unpaid order
func (o *Order) MarkPaymentFailed() error {
	if o.PaymentStatus != PaymentStatusUnpaid && o.PaymentStatus != PaymentStatusFailed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark %s order as failed", o.PaymentStatus))
	}
	o.PaymentStatus = PaymentStatusFailed
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// DiscountedSubtotal is the subtotal after the coupon discount
func (o *Order) DiscountedSubtotal() decimal.Decimal {
	return o.Subtotal.Sub(o.DiscountAmount)
}

// TotalMoney returns the total as Money
func (o *Order) TotalMoney() valueobject.Money {
	return valueobject.MustNewMoney(o.Total, o.Currency)
}

// ItemCount returns the number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	o.Subtotal = subtotal

	if o.DiscountAmount.GreaterThan(subtotal) {
		o.DiscountAmount = subtotal
	}
	o.Total = subtotal.Sub(o.DiscountAmount).Add(o.ShippingAmount)
	o.UpdatedAt = time.Now()
}

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderNumber returns "<prefix>-YYYYMMDD-XXXXXX" with a random suffix
func GenerateOrderNumber(prefix string, now time.Time) string {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		copy(buf[:], uuid.New().String())
	}
	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	if prefix == "" {
		prefix = "ORD"
	}
	return fmt.Sprintf("%s-%s-%s", strings.ToUpper(prefix), now.UTC().Format("20060102"), suffix)
}
