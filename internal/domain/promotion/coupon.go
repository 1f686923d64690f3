package promotion

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

var hundred = decimal.NewFromInt(100)

// DiscountType is how a coupon's value is interpreted
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

// IsValid checks if the discount type is known
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercent || t == DiscountTypeFixed
}

// Error codes returned by the validation pipeline, in evaluation order
const (
	CodeCouponNotFound      = "COUPON_NOT_FOUND"
	CodeCouponInactive      = "COUPON_INACTIVE"
	CodeCouponNotStarted    = "COUPON_NOT_STARTED"
	CodeCouponExpired       = "COUPON_EXPIRED"
	CodeCouponUsageExceeded = "COUPON_USAGE_EXCEEDED"
	CodeCouponMinOrder      = "COUPON_MIN_ORDER_NOT_MET"
)

var (
	ErrCouponNotFound      = shared.NewDomainError(CodeCouponNotFound, "Coupon code is not valid")
	ErrCouponInactive      = shared.NewDomainError(CodeCouponInactive, "Coupon is no longer active")
	ErrCouponNotStarted    = shared.NewDomainError(CodeCouponNotStarted, "Coupon is not yet valid")
	ErrCouponExpired       = shared.NewDomainError(CodeCouponExpired, "Coupon has expired")
	ErrCouponUsageExceeded = shared.NewDomainError(CodeCouponUsageExceeded, "Coupon usage limit has been reached")
)

// Coupon is a discount code. A coupon may be tied to a partner so that
// orders using it are attributed to that partner.
type Coupon struct {
	shared.BaseAggregateRoot
	Code           string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description    string           `gorm:"type:varchar(500)"`
	Type           DiscountType     `gorm:"type:varchar(10);not null"`
	Value          decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	MinOrderAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MaxDiscount    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	UsageLimit     int              `gorm:"not null;default:0"`
	UsageCount     int              `gorm:"not null;default:0"`
	StartsAt       *time.Time
	ExpiresAt      *time.Time
	Active         bool       `gorm:"not null;default:true"`
	PartnerID      *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Coupon) TableName() string {
	return "coupons"
}

// NewCoupon creates an active, unlimited coupon
func NewCoupon(code string, discountType DiscountType, value decimal.Decimal) (*Coupon, error) {
	c := &Coupon{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Active:            true,
	}
	if err := c.SetCode(code); err != nil {
		return nil, err
	}
	if err := c.SetDiscount(discountType, value, nil); err != nil {
		return nil, err
	}
	return c, nil
}

// SetCode changes the code. Codes are case-insensitive and stored upper-case.
func (c *Coupon) SetCode(code string) error {
	code = NormalizeCode(code)
	if len(code) < 3 || len(code) > 50 {
		return shared.NewDomainError("INVALID_COUPON_CODE", "Coupon code must be between 3 and 50 characters")
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '-' && r != '_' {
			return shared.NewDomainError("INVALID_COUPON_CODE", "Coupon code may only contain letters, digits, dashes and underscores")
		}
	}
	c.Code = code
	c.touch()
	return nil
}

// SetDiscount sets the type, value and optional cap of the discount.
// The cap only applies to percent coupons.
func (c *Coupon) SetDiscount(discountType DiscountType, value decimal.Decimal, maxDiscount *decimal.Decimal) error {
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be percent or fixed")
	}
	if !value.IsPositive() {
		return shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Discount value must be greater than zero")
	}
	if discountType == DiscountTypePercent && value.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Percent discount cannot exceed 100")
	}
	if maxDiscount != nil {
		if discountType != DiscountTypePercent {
			return shared.NewDomainError("INVALID_MAX_DISCOUNT", "Maximum discount only applies to percent coupons")
		}
		if !maxDiscount.IsPositive() {
			return shared.NewDomainError("INVALID_MAX_DISCOUNT", "Maximum discount must be greater than zero")
		}
	}

	c.Type = discountType
	c.Value = value.Round(2)
	c.MaxDiscount = maxDiscount
	c.touch()
	return nil
}

// SetMinOrderAmount sets or clears the minimum subtotal
func (c *Coupon) SetMinOrderAmount(amount *decimal.Decimal) error {
	if amount != nil && amount.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_ORDER", "Minimum order amount cannot be negative")
	}
	c.MinOrderAmount = amount
	c.touch()
	return nil
}

// SetUsageLimit sets the maximum number of redemptions; 0 means unlimited
func (c *Coupon) SetUsageLimit(limit int) error {
	if limit < 0 {
		return shared.NewDomainError("INVALID_USAGE_LIMIT", "Usage limit cannot be negative")
	}
	c.UsageLimit = limit
	c.touch()
	return nil
}

// SetValidity sets the optional validity window
func (c *Coupon) SetValidity(startsAt, expiresAt *time.Time) error {
	if startsAt != nil && expiresAt != nil && !expiresAt.After(*startsAt) {
		return shared.NewDomainError("INVALID_VALIDITY", "Expiry must be after the start date")
	}
	c.StartsAt = startsAt
	c.ExpiresAt = expiresAt
	c.touch()
	return nil
}

// SetDescription sets the internal description
func (c *Coupon) SetDescription(description string) error {
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	c.Description = description
	c.touch()
	return nil
}

// AssignPartner links or unlinks the coupon to a partner
func (c *Coupon) AssignPartner(partnerID *uuid.UUID) {
	c.PartnerID = partnerID
	c.touch()
}

// Activate enables the coupon
func (c *Coupon) Activate() error {
	if c.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Coupon is already active")
	}
	c.Active = true
	c.touch()
	return nil
}

// Deactivate disables the coupon
func (c *Coupon) Deactivate() error {
	if !c.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Coupon is already inactive")
	}
	c.Active = false
	c.touch()
	return nil
}

// Validate runs the redemption checks against a subtotal at time now and
// returns the discount that would apply. Checks run in a fixed order so
// that callers always see the first failing rule: active flag, start date,
// expiry, usage limit, then minimum order.
func (c *Coupon) Validate(subtotal decimal.Decimal, now time.Time) (*Discount, error) {
	if !c.Active {
		return nil, ErrCouponInactive
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return nil, ErrCouponNotStarted
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return nil, ErrCouponExpired
	}
	if c.IsUsageExhausted() {
		return nil, ErrCouponUsageExceeded
	}
	if c.MinOrderAmount != nil && subtotal.LessThan(*c.MinOrderAmount) {
		return nil, shared.NewDomainError(CodeCouponMinOrder,
			"Order subtotal must be at least "+c.MinOrderAmount.StringFixed(2)+" to use this coupon")
	}

	return &Discount{
		CouponID:  c.ID,
		Code:      c.Code,
		Type:      c.Type,
		Value:     c.Value,
		Amount:    c.DiscountFor(subtotal),
		PartnerID: c.PartnerID,
	}, nil
}

// DiscountFor computes the discount on subtotal, never exceeding it
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch c.Type {
	case DiscountTypePercent:
		amount = subtotal.Mul(c.Value).Div(hundred)
		if c.MaxDiscount != nil && amount.GreaterThan(*c.MaxDiscount) {
			amount = *c.MaxDiscount
		}
	case DiscountTypeFixed:
		amount = c.Value
	}

	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return amount.Round(2)
}

// IsUsageExhausted reports whether the usage limit has been reached
func (c *Coupon) IsUsageExhausted() bool {
	return c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit
}

// IsExpired reports whether the coupon is past its expiry at now
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// RemainingUses returns the number of redemptions left, or -1 when unlimited
func (c *Coupon) RemainingUses() int {
	if c.UsageLimit == 0 {
		return -1
	}
	if c.UsageCount >= c.UsageLimit {
		return 0
	}
	return c.UsageLimit - c.UsageCount
}

func (c *Coupon) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// NormalizeCode trims and upper-cases a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
