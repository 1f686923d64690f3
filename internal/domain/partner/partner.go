package partner

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

var hundred = decimal.NewFromInt(100)

// Partner is an affiliate whose coupon code attributes orders to it.
// Commission accrues on the discounted subtotal of delivered orders.
type Partner struct {
	shared.BaseAggregateRoot
	Name             string          `gorm:"type:varchar(100);not null"`
	Email            string          `gorm:"type:varchar(200);not null"`
	CouponCode       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CommissionRate   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Active           bool            `gorm:"not null;default:true"`
	OrderCount       int             `gorm:"not null;default:0"`
	SalesAmount      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Notes            string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Partner) TableName() string {
	return "partners"
}

// NewPartner creates an active partner
func NewPartner(name, email, couponCode string, commissionRate decimal.Decimal) (*Partner, error) {
	p := &Partner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Active:            true,
		SalesAmount:       decimal.Zero,
		CommissionAmount:  decimal.Zero,
	}
	if err := p.Update(name, email, commissionRate, ""); err != nil {
		return nil, err
	}
	if err := p.SetCouponCode(couponCode); err != nil {
		return nil, err
	}
	return p, nil
}

// Update changes contact details and the commission rate
func (p *Partner) Update(name, email string, commissionRate decimal.Decimal, notes string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Partner name must be between 1 and 100 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return shared.NewDomainError("INVALID_EMAIL", "Partner email is not valid")
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_COMMISSION_RATE", "Commission rate must be between 0 and 100")
	}

	p.Name = name
	p.Email = email
	p.CommissionRate = commissionRate.Round(2)
	p.Notes = notes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetCouponCode changes the tracking code. Codes are case-insensitive
// and stored upper-case.
func (p *Partner) SetCouponCode(code string) error {
	code = NormalizeCode(code)
	if len(code) < 3 || len(code) > 50 {
		return shared.NewDomainError("INVALID_COUPON_CODE", "Coupon code must be between 3 and 50 characters")
	}
	p.CouponCode = code
	p.UpdatedAt = time.Now()
	return nil
}

// Activate enables commission tracking
func (p *Partner) Activate() error {
	if p.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Partner is already active")
	}
	p.Active = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate stops commission tracking
func (p *Partner) Deactivate() error {
	if !p.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Partner is already inactive")
	}
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// CommissionFor returns the commission earned on a sale amount
func (p *Partner) CommissionFor(saleAmount decimal.Decimal) decimal.Decimal {
	if saleAmount.IsNegative() {
		return decimal.Zero
	}
	return saleAmount.Mul(p.CommissionRate).Div(hundred).Round(2)
}

// RecordSale accrues a delivered order. Inactive partners accrue nothing.
func (p *Partner) RecordSale(orderID uuid.UUID, saleAmount decimal.Decimal) (decimal.Decimal, error) {
	if !p.Active {
		return decimal.Zero, shared.NewDomainError("PARTNER_INACTIVE", "Partner is not active")
	}
	if saleAmount.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Sale amount cannot be negative")
	}

	commission := p.CommissionFor(saleAmount)
	p.OrderCount++
	p.SalesAmount = p.SalesAmount.Add(saleAmount)
	p.CommissionAmount = p.CommissionAmount.Add(commission)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewCommissionAccruedEvent(p, orderID, saleAmount, commission))
	return commission, nil
}

// NormalizeCode trims and upper-cases a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
