package shipping

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// RateRepository persists shipping rates.
//
// Supported filter keys: "active" (bool).
type RateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Rate, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Rate, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, rate *Rate) error
	Delete(ctx context.Context, id uuid.UUID) error
}
