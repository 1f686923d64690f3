package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPartnerRepository implements partner.PartnerRepository using GORM
type GormPartnerRepository struct {
	db *gorm.DB
}

func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

func (r *GormPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	var p partner.Partner
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormPartnerRepository) FindByCouponCode(ctx context.Context, code string) (*partner.Partner, error) {
	var p partner.Partner
	if err := r.db.WithContext(ctx).First(&p, "coupon_code = ?", partner.NormalizeCode(code)).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormPartnerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Partner, error) {
	var partners []partner.Partner
	query := paginate(r.applyFilter(r.db.WithContext(ctx).Model(&partner.Partner{}), filter),
		filter, PartnerSortFields, "created_at DESC")
	if err := query.Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *GormPartnerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&partner.Partner{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPartnerRepository) ExistsByCouponCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&partner.Partner{}).
		Where("coupon_code = ?", partner.NormalizeCode(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a partner. The accrued totals are only written
// by AccrueSale.
func (r *GormPartnerRepository) Save(ctx context.Context, p *partner.Partner) error {
	return upsertOmitting(r.db.WithContext(ctx), p, p.ID, "order_count", "sales_amount", "commission_amount")
}

// AccrueSale adds one order to the partner totals in a single UPDATE
func (r *GormPartnerRepository) AccrueSale(ctx context.Context, id uuid.UUID, sale, commission decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&partner.Partner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"order_count":       gorm.Expr("order_count + 1"),
			"sales_amount":      gorm.Expr("sales_amount + ?", sale),
			"commission_amount": gorm.Expr("commission_amount + ?", commission),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormPartnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &partner.Partner{}, id)
}

func (r *GormPartnerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(coupon_code) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	return query
}

var _ partner.PartnerRepository = (*GormPartnerRepository)(nil)
