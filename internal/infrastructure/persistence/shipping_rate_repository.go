package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"gorm.io/gorm"
)

// GormShippingRateRepository implements shipping.RateRepository using GORM
type GormShippingRateRepository struct {
	db *gorm.DB
}

func NewGormShippingRateRepository(db *gorm.DB) *GormShippingRateRepository {
	return &GormShippingRateRepository{db: db}
}

func (r *GormShippingRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Rate, error) {
	var rate shipping.Rate
	if err := r.db.WithContext(ctx).First(&rate, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rate, nil
}

// FindAll lists rates ordered by sort order then price unless the filter asks otherwise
func (r *GormShippingRateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]shipping.Rate, error) {
	var rates []shipping.Rate
	query := paginate(r.applyFilter(r.db.WithContext(ctx).Model(&shipping.Rate{}), filter),
		filter, ShippingRateSortFields, "sort_order ASC, price ASC")
	if err := query.Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *GormShippingRateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&shipping.Rate{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormShippingRateRepository) Save(ctx context.Context, rate *shipping.Rate) error {
	return upsertOmitting(r.db.WithContext(ctx), rate, rate.ID)
}

func (r *GormShippingRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &shipping.Rate{}, id)
}

func (r *GormShippingRateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	return query
}

var _ shipping.RateRepository = (*GormShippingRateRepository)(nil)
