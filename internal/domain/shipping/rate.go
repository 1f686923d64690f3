package shipping

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ErrRateUnavailable is returned when quoting an inactive rate
var ErrRateUnavailable = shared.NewDomainError("SHIPPING_RATE_UNAVAILABLE", "Shipping rate is not available")

// Rate is a flat shipping option offered at checkout, optionally free
// above a subtotal threshold.
type Rate struct {
	shared.BaseAggregateRoot
	Name             string           `gorm:"type:varchar(100);not null"`
	Description      string           `gorm:"type:varchar(500)"`
	Price            decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	FreeAboveAmount  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EstimatedDaysMin int              `gorm:"not null;default:0"`
	EstimatedDaysMax int              `gorm:"not null;default:0"`
	Active           bool             `gorm:"not null;default:true"`
	SortOrder        int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Rate) TableName() string {
	return "shipping_rates"
}

// NewRate creates an active shipping rate
func NewRate(name string, price decimal.Decimal) (*Rate, error) {
	r := &Rate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Active:            true,
	}
	if err := r.Update(name, "", price); err != nil {
		return nil, err
	}
	return r, nil
}

// Update changes name, description and price
func (r *Rate) Update(name, description string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Shipping rate name must be between 1 and 100 characters")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Shipping price cannot be negative")
	}
	r.Name = name
	r.Description = description
	r.Price = price.Round(2)
	r.touch()
	return nil
}

// SetFreeAbove sets or clears the free-shipping threshold
func (r *Rate) SetFreeAbove(amount *decimal.Decimal) error {
	if amount != nil && amount.IsNegative() {
		return shared.NewDomainError("INVALID_FREE_ABOVE", "Free shipping threshold cannot be negative")
	}
	r.FreeAboveAmount = amount
	r.touch()
	return nil
}

// SetEstimate sets the delivery window in days
func (r *Rate) SetEstimate(minDays, maxDays int) error {
	if minDays < 0 || maxDays < 0 || (maxDays > 0 && maxDays < minDays) {
		return shared.NewDomainError("INVALID_ESTIMATE", "Delivery estimate is not a valid range")
	}
	r.EstimatedDaysMin = minDays
	r.EstimatedDaysMax = maxDays
	r.touch()
	return nil
}

// SetSortOrder sets the display position
func (r *Rate) SetSortOrder(order int) {
	r.SortOrder = order
	r.touch()
}

// Activate offers the rate at checkout
func (r *Rate) Activate() error {
	if r.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Shipping rate is already active")
	}
	r.Active = true
	r.touch()
	return nil
}

// Deactivate withdraws the rate from checkout
func (r *Rate) Deactivate() error {
	if !r.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Shipping rate is already inactive")
	}
	r.Active = false
	r.touch()
	return nil
}

// Quote returns the shipping cost for an order subtotal
func (r *Rate) Quote(subtotal decimal.Decimal) (decimal.Decimal, error) {
	if !r.Active {
		return decimal.Zero, ErrRateUnavailable
	}
	if r.FreeAboveAmount != nil && subtotal.GreaterThanOrEqual(*r.FreeAboveAmount) {
		return decimal.Zero, nil
	}
	return r.Price, nil
}

func (r *Rate) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
