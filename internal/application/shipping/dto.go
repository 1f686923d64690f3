package shipping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shipping"
)

// CreateRateRequest represents a request to create a shipping rate
type CreateRateRequest struct {
	Name             string           `json:"name" binding:"required,min=1,max=100"`
	Description      string           `json:"description" binding:"max=500"`
	Price            decimal.Decimal  `json:"price"`
	FreeAboveAmount  *decimal.Decimal `json:"free_above_amount"`
	EstimatedDaysMin int              `json:"estimated_days_min" binding:"min=0"`
	EstimatedDaysMax int              `json:"estimated_days_max" binding:"min=0"`
	SortOrder        int              `json:"sort_order"`
}

// UpdateRateRequest represents a partial shipping rate update
type UpdateRateRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description      *string          `json:"description" binding:"omitempty,max=500"`
	Price            *decimal.Decimal `json:"price"`
	FreeAboveAmount  *decimal.Decimal `json:"free_above_amount"`
	ClearFreeAbove   bool             `json:"clear_free_above"`
	EstimatedDaysMin *int             `json:"estimated_days_min" binding:"omitempty,min=0"`
	EstimatedDaysMax *int             `json:"estimated_days_max" binding:"omitempty,min=0"`
	SortOrder        *int             `json:"sort_order"`
}

// QuoteRequest asks for the shipping cost of a subtotal
type QuoteRequest struct {
	Subtotal decimal.Decimal `json:"subtotal"`
}

// QuoteResponse is the cost of shipping an order with a rate
type QuoteResponse struct {
	RateID   uuid.UUID       `json:"rate_id"`
	RateName string          `json:"rate_name"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Cost     decimal.Decimal `json:"cost"`
	Free     bool            `json:"free"`
}

// RateListFilter represents filter options for shipping rate lists
type RateListFilter struct {
	Active   *bool `form:"active"`
	Page     int   `form:"page" binding:"omitempty,min=1"`
	PageSize int   `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// RateResponse represents a shipping rate in API responses
type RateResponse struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Price            decimal.Decimal  `json:"price"`
	FreeAboveAmount  *decimal.Decimal `json:"free_above_amount,omitempty"`
	EstimatedDaysMin int              `json:"estimated_days_min"`
	EstimatedDaysMax int              `json:"estimated_days_max"`
	Active           bool             `json:"active"`
	SortOrder        int              `json:"sort_order"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ToRateResponse converts a domain Rate
func ToRateResponse(r *shipping.Rate) RateResponse {
	return RateResponse{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		Price:            r.Price,
		FreeAboveAmount:  r.FreeAboveAmount,
		EstimatedDaysMin: r.EstimatedDaysMin,
		EstimatedDaysMax: r.EstimatedDaysMax,
		Active:           r.Active,
		SortOrder:        r.SortOrder,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
