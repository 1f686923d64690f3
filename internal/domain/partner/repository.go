package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// PartnerRepository persists partners.
//
// Supported filter keys: "active" (bool).
type PartnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	FindByCouponCode(ctx context.Context, code string) (*Partner, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Partner, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByCouponCode(ctx context.Context, code string) (bool, error)
	// Save leaves the accrued totals untouched
	Save(ctx context.Context, partner *Partner) error
	// AccrueSale atomically adds one order with its sale and commission amounts
	AccrueSale(ctx context.Context, id uuid.UUID, sale, commission decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
}
