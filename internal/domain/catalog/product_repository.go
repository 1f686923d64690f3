package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository persists products.
//
// Supported filter keys: "category_id" (uuid.UUID), "active" (bool),
// "featured" (bool), "min_price" and "max_price" (decimal.Decimal).
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	// Save creates a product or updates everything but its stock quantity
	Save(ctx context.Context, product *Product) error
	// AdjustStock atomically adds delta to the stock and returns the new
	// quantity. It fails with shared.ErrInsufficientStock instead of going
	// below zero.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists categories.
//
// Supported filter keys: "active" (bool).
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}
