package promotion

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Validator resolves a customer-entered code to a Discount
type Validator struct {
	repo CouponRepository
	now  func() time.Time
}

// NewValidator creates a coupon validator backed by repo
func NewValidator(repo CouponRepository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// WithClock overrides the time source
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Validate looks the code up and runs Coupon.Validate against subtotal.
// A missing coupon yields ErrCouponNotFound; other lookup failures are
// returned unchanged.
func (v *Validator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, *Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, nil, ErrCouponNotFound
	}

	coupon, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, ErrCouponNotFound
		}
		return nil, nil, err
	}

	discount, err := coupon.Validate(subtotal, v.now())
	if err != nil {
		return nil, coupon, err
	}
	return discount, coupon, nil
}
