package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.withItems(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.withItems(ctx).First(&o, "order_number = ?", orderNumber).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *GormOrderRepository) FindByPaymentReference(ctx context.Context, ref string) (*order.Order, error) {
	if ref == "" {
		return nil, shared.ErrNotFound
	}
	var o order.Order
	if err := r.withItems(ctx).First(&o, "payment_reference = ?", ref).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := paginate(r.applyFilter(r.withItems(ctx).Model(&order.Order{}), filter),
		filter, OrderSortFields, "created_at DESC")
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&order.Order{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Place decrements stock and redeems the coupon with conditional updates,
// then inserts the order and its items. Any failed condition rolls back.
func (r *GormOrderRepository) Place(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, item := range o.Items {
			result := tx.Model(&catalog.Product{}).
				Where("id = ? AND active = ? AND stock_quantity >= ?", item.ProductID, true, item.Quantity).
				Updates(map[string]interface{}{
					"stock_quantity": gorm.Expr("stock_quantity - ?", item.Quantity),
					"updated_at":     now,
				})
			if result.Error != nil {
				return fmt.Errorf("reserve stock for %s: %w", item.ProductID, result.Error)
			}
			if result.RowsAffected == 0 {
				return shared.NewDomainErrorWithCause(shared.ErrInsufficientStock.Code,
					fmt.Sprintf("Insufficient stock for %s", item.ProductName), shared.ErrInsufficientStock)
			}
		}

		if o.CouponID != nil {
			result := tx.Model(&promotion.Coupon{}).
				Where("id = ? AND active = ? AND (usage_limit = 0 OR usage_count < usage_limit)", *o.CouponID, true).
				Updates(map[string]interface{}{
					"usage_count": gorm.Expr("usage_count + 1"),
					"updated_at":  now,
				})
			if result.Error != nil {
				return fmt.Errorf("redeem coupon %s: %w", o.CouponCode, result.Error)
			}
			if result.RowsAffected == 0 {
				return redeemFailure(tx, *o.CouponID)
			}
		}

		return tx.Create(o).Error
	})
}

// redeemFailure reports which redeem condition no longer holds
func redeemFailure(tx *gorm.DB, couponID uuid.UUID) error {
	var c promotion.Coupon
	if err := tx.Select("id", "active").First(&c, "id = ?", couponID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return promotion.ErrCouponNotFound
		}
		return fmt.Errorf("load coupon %s: %w", couponID, err)
	}
	if !c.Active {
		return promotion.ErrCouponInactive
	}
	return promotion.ErrCouponUsageExceeded
}

// Save writes the fields that change after placement. It fails with
// shared.ErrConcurrencyConflict when another writer got there first.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.saveLocked(r.db.WithContext(ctx), o)
}

func (r *GormOrderRepository) SaveCancelled(ctx context.Context, o *order.Order) error {
	if o.Status != order.StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Order is not cancelled")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveLocked(tx, o); err != nil {
			return err
		}
		now := time.Now()
		for _, item := range o.Items {
			if err := tx.Model(&catalog.Product{}).
				Where("id = ?", item.ProductID).
				Updates(map[string]interface{}{
					"stock_quantity": gorm.Expr("stock_quantity + ?", item.Quantity),
					"updated_at":     now,
				}).Error; err != nil {
				return fmt.Errorf("restock %s: %w", item.ProductID, err)
			}
		}
		if o.CouponID != nil {
			if err := tx.Model(&promotion.Coupon{}).
				Where("id = ? AND usage_count > 0", *o.CouponID).
				Update("usage_count", gorm.Expr("usage_count - 1")).Error; err != nil {
				return fmt.Errorf("release coupon %s: %w", o.CouponCode, err)
			}
		}
		return nil
	})
}

func (r *GormOrderRepository) saveLocked(db *gorm.DB, o *order.Order) error {
	result := db.Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]interface{}{
			"status":            o.Status,
			"payment_status":    o.PaymentStatus,
			"payment_reference": o.PaymentReference,
			"tracking_number":   o.TrackingNumber,
			"notes":             o.Notes,
			"cancel_reason":     o.CancelReason,
			"paid_at":           o.PaidAt,
			"shipped_at":        o.ShippedAt,
			"delivered_at":      o.DeliveredAt,
			"cancelled_at":      o.CancelledAt,
			"version":           o.Version,
			"updated_at":        o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

type orderTotalsRow struct {
	Status  order.Status
	Orders  int64
	Revenue decimal.Decimal
}

// Stats aggregates counts and revenue per status plus the paid revenue
func (r *GormOrderRepository) Stats(ctx context.Context, from, to *time.Time) (*order.Stats, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&order.Order{})
		if from != nil {
			q = q.Where("created_at >= ?", *from)
		}
		if to != nil {
			q = q.Where("created_at < ?", *to)
		}
		return q
	}

	var rows []orderTotalsRow
	if err := scoped().
		Select("status, COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &order.Stats{
		ByStatus:        make(map[order.Status]int64, len(order.AllStatuses)),
		RevenueByStatus: make(map[order.Status]decimal.Decimal, len(order.AllStatuses)),
		PaidRevenue:     decimal.Zero,
	}
	for _, s := range order.AllStatuses {
		stats.ByStatus[s] = 0
		stats.RevenueByStatus[s] = decimal.Zero
	}
	for _, row := range rows {
		stats.TotalOrders += row.Orders
		stats.ByStatus[row.Status] = row.Orders
		stats.RevenueByStatus[row.Status] = row.Revenue
	}

	var paid orderTotalsRow
	if err := scoped().
		Select("COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue").
		Where("payment_status = ?", order.PaymentStatusPaid).
		Scan(&paid).Error; err != nil {
		return nil, err
	}
	stats.PaidOrders = paid.Orders
	stats.PaidRevenue = paid.Revenue

	return stats, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(`LOWER(order_number) LIKE ? ESCAPE '\' OR LOWER(customer_email) LIKE ? ESCAPE '\' OR LOWER(customer_name) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at < ?", value)
		}
	}
	return query
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
