package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/promotion"
)

// CreateCouponRequest represents a request to create a coupon
type CreateCouponRequest struct {
	Code           string           `json:"code" binding:"required,min=3,max=50"`
	Description    string           `json:"description" binding:"max=500"`
	Type           string           `json:"type" binding:"required,oneof=percent fixed"`
	Value          decimal.Decimal  `json:"value" binding:"required"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	MaxDiscount    *decimal.Decimal `json:"max_discount"`
	UsageLimit     int              `json:"usage_limit" binding:"min=0"`
	StartsAt       *time.Time       `json:"starts_at"`
	ExpiresAt      *time.Time       `json:"expires_at"`
	PartnerID      *uuid.UUID       `json:"partner_id"`
	Active         *bool            `json:"active"`
}

// UpdateCouponRequest represents a partial coupon update. Pointer fields
// left nil keep their value; the Clear* flags remove optional settings.
type UpdateCouponRequest struct {
	Code                *string          `json:"code" binding:"omitempty,min=3,max=50"`
	Description         *string          `json:"description" binding:"omitempty,max=500"`
	Type                *string          `json:"type" binding:"omitempty,oneof=percent fixed"`
	Value               *decimal.Decimal `json:"value"`
	MinOrderAmount      *decimal.Decimal `json:"min_order_amount"`
	ClearMinOrderAmount bool             `json:"clear_min_order_amount"`
	MaxDiscount         *decimal.Decimal `json:"max_discount"`
	ClearMaxDiscount    bool             `json:"clear_max_discount"`
	UsageLimit          *int             `json:"usage_limit" binding:"omitempty,min=0"`
	StartsAt            *time.Time       `json:"starts_at"`
	ExpiresAt           *time.Time       `json:"expires_at"`
	ClearValidity       bool             `json:"clear_validity"`
	PartnerID           *uuid.UUID       `json:"partner_id"`
	ClearPartner        bool             `json:"clear_partner"`
}

// ValidateCouponRequest is the storefront coupon check
type ValidateCouponRequest struct {
	Code     string          `json:"code" binding:"required,max=50"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CouponListFilter represents filter options for coupon lists
type CouponListFilter struct {
	Search    string     `form:"search"`
	Active    *bool      `form:"active"`
	PartnerID *uuid.UUID `form:"partner_id"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by" binding:"omitempty,oneof=created_at code value usage_count expires_at"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CouponResponse represents a coupon in API responses
type CouponResponse struct {
	ID             uuid.UUID        `json:"id"`
	Code           string           `json:"code"`
	Description    string           `json:"description,omitempty"`
	Type           string           `json:"type"`
	Value          decimal.Decimal  `json:"value"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty"`
	MaxDiscount    *decimal.Decimal `json:"max_discount,omitempty"`
	UsageLimit     int              `json:"usage_limit"`
	UsageCount     int              `json:"usage_count"`
	RemainingUses  int              `json:"remaining_uses"`
	StartsAt       *time.Time       `json:"starts_at,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	Active         bool             `json:"active"`
	PartnerID      *uuid.UUID       `json:"partner_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToCouponResponse converts a domain Coupon
func ToCouponResponse(c *promotion.Coupon) CouponResponse {
	return CouponResponse{
		ID:             c.ID,
		Code:           c.Code,
		Description:    c.Description,
		Type:           string(c.Type),
		Value:          c.Value,
		MinOrderAmount: c.MinOrderAmount,
		MaxDiscount:    c.MaxDiscount,
		UsageLimit:     c.UsageLimit,
		UsageCount:     c.UsageCount,
		RemainingUses:  c.RemainingUses(),
		StartsAt:       c.StartsAt,
		ExpiresAt:      c.ExpiresAt,
		Active:         c.Active,
		PartnerID:      c.PartnerID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// DiscountResponse is the discount descriptor returned by validation
type DiscountResponse struct {
	CouponID  uuid.UUID       `json:"coupon_id"`
	Code      string          `json:"code"`
	Type      string          `json:"type"`
	Value     decimal.Decimal `json:"value"`
	Amount    decimal.Decimal `json:"amount"`
	PartnerID *uuid.UUID      `json:"partner_id,omitempty"`
}

// ToDiscountResponse converts a domain Discount
func ToDiscountResponse(d *promotion.Discount) DiscountResponse {
	return DiscountResponse{
		CouponID:  d.CouponID,
		Code:      d.Code,
		Type:      string(d.Type),
		Value:     d.Value,
		Amount:    d.Amount,
		PartnerID: d.PartnerID,
	}
}
