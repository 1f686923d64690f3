package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/partner"
)

// CreatePartnerRequest represents a request to create a partner
type CreatePartnerRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	Email          string          `json:"email" binding:"required,email,max=200"`
	CouponCode     string          `json:"coupon_code" binding:"required,min=3,max=50"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Notes          string          `json:"notes" binding:"max=2000"`
}

// UpdatePartnerRequest represents a partial partner update
type UpdatePartnerRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Email          *string          `json:"email" binding:"omitempty,email,max=200"`
	CouponCode     *string          `json:"coupon_code" binding:"omitempty,min=3,max=50"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	Notes          *string          `json:"notes" binding:"omitempty,max=2000"`
}

// PartnerListFilter represents filter options for partner lists
type PartnerListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name created_at sales_amount commission_amount"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PartnerResponse represents a partner in API responses
type PartnerResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	CouponCode       string          `json:"coupon_code"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	Active           bool            `json:"active"`
	OrderCount       int             `json:"order_count"`
	SalesAmount      decimal.Decimal `json:"sales_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToPartnerResponse converts a domain Partner
func ToPartnerResponse(p *partner.Partner) PartnerResponse {
	return PartnerResponse{
		ID:               p.ID,
		Name:             p.Name,
		Email:            p.Email,
		CouponCode:       p.CouponCode,
		CommissionRate:   p.CommissionRate,
		Active:           p.Active,
		OrderCount:       p.OrderCount,
		SalesAmount:      p.SalesAmount,
		CommissionAmount: p.CommissionAmount,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
