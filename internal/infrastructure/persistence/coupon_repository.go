package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCouponRepository implements promotion.CouponRepository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Coupon, error) {
	var coupon promotion.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &coupon, nil
}

func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	var coupon promotion.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "code = ?", promotion.NormalizeCode(code)).Error; err != nil {
		return nil, notFound(err)
	}
	return &coupon, nil
}

func (r *GormCouponRepository) FindAll(ctx context.Context, filter shared.Filter) ([]promotion.Coupon, error) {
	var coupons []promotion.Coupon
	query := paginate(r.applyFilter(r.db.WithContext(ctx).Model(&promotion.Coupon{}), filter),
		filter, CouponSortFields, "created_at DESC")
	if err := query.Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *GormCouponRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&promotion.Coupon{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCouponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&promotion.Coupon{}).
		Where("code = ?", promotion.NormalizeCode(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a coupon. usage_count is owned by checkout and
// cancellation, so updates leave it untouched.
func (r *GormCouponRepository) Save(ctx context.Context, coupon *promotion.Coupon) error {
	return upsertOmitting(r.db.WithContext(ctx), coupon, coupon.ID, "usage_count")
}

func (r *GormCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &promotion.Coupon{}, id)
}

func (r *GormCouponRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where(`LOWER(code) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`,
			containsPattern(filter.Search), containsPattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		case "partner_id":
			query = query.Where("partner_id = ?", value)
		}
	}
	return query
}

var _ promotion.CouponRepository = (*GormCouponRepository)(nil)
