package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=999"`
}

// UpdateItemRequest replaces the quantity of a line; 0 removes it
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=999"`
}

// ApplyCouponRequest applies a coupon code to the cart
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

// CartItemResponse is a cart line priced from the current catalog
type CartItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Available bool            `json:"available"`
	// Problem explains why an unavailable line cannot be ordered
	Problem string `json:"problem,omitempty"`
}

// CouponProblem explains why a stored coupon was dropped from the summary
type CouponProblem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CartResponse is the cart with its summary
type CartResponse struct {
	ID             uuid.UUID          `json:"id"`
	Items          []CartItemResponse `json:"items"`
	CouponCode     string             `json:"coupon_code,omitempty"`
	CouponProblem  *CouponProblem     `json:"coupon_problem,omitempty"`
	Currency       string             `json:"currency"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Total          decimal.Decimal    `json:"total"`
	ItemCount      int                `json:"item_count"`
	HasUnavailable bool               `json:"has_unavailable_items"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
