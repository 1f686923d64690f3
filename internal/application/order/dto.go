package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// CheckoutItem is an explicit line for checkout without a cart
type CheckoutItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=999"`
}

// CustomerInput carries the buyer's contact details
type CustomerInput struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"required,email,max=200"`
	Phone string `json:"phone" binding:"max=50"`
}

// AddressInput is the shipping address entered at checkout
type AddressInput struct {
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
}

// CheckoutRequest places an order from a cart or from an explicit item
// list. When both are given the cart wins.
type CheckoutRequest struct {
	CartID          *uuid.UUID     `json:"cart_id"`
	Items           []CheckoutItem `json:"items" binding:"omitempty,max=100,dive"`
	Customer        CustomerInput  `json:"customer" binding:"required"`
	ShippingAddress AddressInput   `json:"shipping_address" binding:"required"`
	ShippingRateID  uuid.UUID      `json:"shipping_rate_id" binding:"required"`
	CouponCode      string         `json:"coupon_code" binding:"max=50"`
	PaymentMethod   string         `json:"payment_method" binding:"omitempty,oneof=stripe manual"`
	Notes           string         `json:"notes" binding:"max=1000"`
}

// CheckoutResponse is the placed order plus what the client needs to pay
type CheckoutResponse struct {
	Order           OrderResponse `json:"order"`
	PaymentRequired bool          `json:"payment_required"`
	ClientSecret    string        `json:"client_secret,omitempty"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	CustomerName     string              `json:"customer_name"`
	CustomerEmail    string              `json:"customer_email"`
	CustomerPhone    string              `json:"customer_phone,omitempty"`
	ShippingAddress  valueobject.Address `json:"shipping_address"`
	Items            []OrderItemResponse `json:"items"`
	Currency         string              `json:"currency"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	DiscountAmount   decimal.Decimal     `json:"discount_amount"`
	ShippingAmount   decimal.Decimal     `json:"shipping_amount"`
	Total            decimal.Decimal     `json:"total"`
	CouponCode       string              `json:"coupon_code,omitempty"`
	PartnerID        *uuid.UUID          `json:"partner_id,omitempty"`
	ShippingRateID   *uuid.UUID          `json:"shipping_rate_id,omitempty"`
	ShippingRateName string              `json:"shipping_rate_name,omitempty"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"payment_status"`
	PaymentMethod    string              `json:"payment_method"`
	PaymentReference string              `json:"payment_reference,omitempty"`
	TrackingNumber   string              `json:"tracking_number,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	CancelReason     string              `json:"cancel_reason,omitempty"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
	ShippedAt        *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Version          int                 `json:"version"`
}

// PublicOrderResponse is what a customer sees when looking an order up.
// Merchant notes and payment references are left out.
type PublicOrderResponse struct {
	OrderNumber      string              `json:"order_number"`
	CustomerName     string              `json:"customer_name"`
	ShippingAddress  valueobject.Address `json:"shipping_address"`
	Items            []OrderItemResponse `json:"items"`
	Currency         string              `json:"currency"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	DiscountAmount   decimal.Decimal     `json:"discount_amount"`
	ShippingAmount   decimal.Decimal     `json:"shipping_amount"`
	Total            decimal.Decimal     `json:"total"`
	CouponCode       string              `json:"coupon_code,omitempty"`
	ShippingRateName string              `json:"shipping_rate_name,omitempty"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"payment_status"`
	TrackingNumber   string              `json:"tracking_number,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	ShippedAt        *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
}

// UpdateStatusRequest moves an order along the status machine
type UpdateStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
	TrackingNumber string `json:"tracking_number" binding:"max=100"`
	Reason         string `json:"reason" binding:"max=500"`
}

// CancelOrderRequest cancels an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// UpdateNotesRequest replaces the merchant notes
type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=5000"`
}

// LookupRequest finds an order by number for the customer who placed it
type LookupRequest struct {
	Number string `form:"number" binding:"required,max=40"`
	Email  string `form:"email" binding:"required,email"`
}

// OrderListFilter filters the merchant order list
type OrderListFilter struct {
	Search        string     `form:"search"`
	Status        string     `form:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=unpaid paid failed refunded"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"min=0"`
	PageSize      int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// StatsFilter bounds the dashboard statistics
type StatsFilter struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// StatsResponse summarizes orders for the dashboard
type StatsResponse struct {
	TotalOrders     int64                      `json:"total_orders"`
	ByStatus        map[string]int64           `json:"by_status"`
	RevenueByStatus map[string]decimal.Decimal `json:"revenue_by_status"`
	PaidOrders      int64                      `json:"paid_orders"`
	PaidRevenue     decimal.Decimal            `json:"paid_revenue"`
	Currency        string                     `json:"currency"`
}

// WebhookResult reports what the Stripe webhook did with an event
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

func toItemResponses(items []order.Item) []OrderItemResponse {
	out := make([]OrderItemResponse, len(items))
	for i, item := range items {
		out[i] = OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		}
	}
	return out
}

// ToOrderResponse converts an order to its merchant view
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		CustomerName:     o.Customer.Name,
		CustomerEmail:    o.Customer.Email,
		CustomerPhone:    o.Customer.Phone,
		ShippingAddress:  o.ShippingAddress,
		Items:            toItemResponses(o.Items),
		Currency:         string(o.Currency),
		Subtotal:         o.Subtotal,
		DiscountAmount:   o.DiscountAmount,
		ShippingAmount:   o.ShippingAmount,
		Total:            o.Total,
		CouponCode:       o.CouponCode,
		PartnerID:        o.PartnerID,
		ShippingRateID:   o.ShippingRateID,
		ShippingRateName: o.ShippingRateName,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		PaymentMethod:    string(o.PaymentMethod),
		PaymentReference: o.PaymentReference,
		TrackingNumber:   o.TrackingNumber,
		Notes:            o.Notes,
		CancelReason:     o.CancelReason,
		PaidAt:           o.PaidAt,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
		CancelledAt:      o.CancelledAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}

// ToPublicOrderResponse converts an order to its customer view
func ToPublicOrderResponse(o *order.Order) PublicOrderResponse {
	return PublicOrderResponse{
		OrderNumber:      o.OrderNumber,
		CustomerName:     o.Customer.Name,
		ShippingAddress:  o.ShippingAddress,
		Items:            toItemResponses(o.Items),
		Currency:         string(o.Currency),
		Subtotal:         o.Subtotal,
		DiscountAmount:   o.DiscountAmount,
		ShippingAmount:   o.ShippingAmount,
		Total:            o.Total,
		CouponCode:       o.CouponCode,
		ShippingRateName: o.ShippingRateName,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		TrackingNumber:   o.TrackingNumber,
		CreatedAt:        o.CreatedAt,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
		CancelledAt:      o.CancelledAt,
	}
}
