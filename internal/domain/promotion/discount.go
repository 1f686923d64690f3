package promotion

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount describes a validated coupon as applied to a subtotal.
// Only one discount applies to a cart or order; applying another replaces it.
type Discount struct {
	CouponID  uuid.UUID       `json:"coupon_id"`
	Code      string          `json:"code"`
	Type      DiscountType    `json:"type"`
	Value     decimal.Decimal `json:"value"`
	Amount    decimal.Decimal `json:"amount"`
	PartnerID *uuid.UUID      `json:"partner_id,omitempty"`
}
