package promotion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/domain/shared"
)

// CouponService handles coupon management and storefront validation
type CouponService struct {
	couponRepo  promotion.CouponRepository
	partnerRepo partner.PartnerRepository
	validator   *promotion.Validator
}

// NewCouponService creates a new CouponService
func NewCouponService(couponRepo promotion.CouponRepository, partnerRepo partner.PartnerRepository) *CouponService {
	return &CouponService{
		couponRepo:  couponRepo,
		partnerRepo: partnerRepo,
		validator:   promotion.NewValidator(couponRepo),
	}
}

// WithClock overrides the time source used for validation
func (s *CouponService) WithClock(now func() time.Time) *CouponService {
	s.validator.WithClock(now)
	return s
}

// Validator exposes the validation pipeline for the cart and checkout
func (s *CouponService) Validator() *promotion.Validator {
	return s.validator
}

// Validate runs the validation pipeline for a storefront code
func (s *CouponService) Validate(ctx context.Context, req ValidateCouponRequest) (*DiscountResponse, error) {
	if req.Subtotal.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SUBTOTAL", "Subtotal cannot be negative")
	}
	discount, _, err := s.validator.Validate(ctx, req.Code, req.Subtotal)
	if err != nil {
		return nil, err
	}
	resp := ToDiscountResponse(discount)
	return &resp, nil
}

// Create creates a new coupon
func (s *CouponService) Create(ctx context.Context, req CreateCouponRequest) (*CouponResponse, error) {
	coupon, err := promotion.NewCoupon(req.Code, promotion.DiscountType(req.Type), req.Value)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCodeAvailable(ctx, coupon.Code); err != nil {
		return nil, err
	}
	if req.MaxDiscount != nil {
		if err := coupon.SetDiscount(coupon.Type, req.Value, req.MaxDiscount); err != nil {
			return nil, err
		}
	}
	if err := coupon.SetDescription(strings.TrimSpace(req.Description)); err != nil {
		return nil, err
	}
	if err := coupon.SetMinOrderAmount(req.MinOrderAmount); err != nil {
		return nil, err
	}
	if err := coupon.SetUsageLimit(req.UsageLimit); err != nil {
		return nil, err
	}
	if err := coupon.SetValidity(req.StartsAt, req.ExpiresAt); err != nil {
		return nil, err
	}
	if req.PartnerID != nil {
		if err := s.ensurePartner(ctx, *req.PartnerID); err != nil {
			return nil, err
		}
		coupon.AssignPartner(req.PartnerID)
	}
	if req.Active != nil && !*req.Active {
		if err := coupon.Deactivate(); err != nil {
			return nil, err
		}
	}

	if err := s.couponRepo.Save(ctx, coupon); err != nil {
		return nil, err
	}
	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// GetByID retrieves a coupon by ID
func (s *CouponService) GetByID(ctx context.Context, id uuid.UUID) (*CouponResponse, error) {
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// List retrieves coupons
func (s *CouponService) List(ctx context.Context, filter CouponListFilter) (*shared.Paginated[CouponResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = strings.TrimSpace(filter.Search)
	if filter.Active != nil {
		f.Filters["active"] = *filter.Active
	}
	if filter.PartnerID != nil {
		f.Filters["partner_id"] = *filter.PartnerID
	}

	coupons, err := s.couponRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.couponRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]CouponResponse, len(coupons))
	for i := range coupons {
		items[i] = ToCouponResponse(&coupons[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update updates a coupon
func (s *CouponService) Update(ctx context.Context, id uuid.UUID, req UpdateCouponRequest) (*CouponResponse, error) {
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && promotion.NormalizeCode(*req.Code) != coupon.Code {
		if err := coupon.SetCode(*req.Code); err != nil {
			return nil, err
		}
		if err := s.ensureCodeAvailable(ctx, coupon.Code); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := coupon.SetDescription(strings.TrimSpace(*req.Description)); err != nil {
			return nil, err
		}
	}

	if req.Type != nil || req.Value != nil || req.MaxDiscount != nil || req.ClearMaxDiscount {
		discountType, value, maxDiscount := coupon.Type, coupon.Value, coupon.MaxDiscount
		if req.Type != nil {
			discountType = promotion.DiscountType(*req.Type)
		}
		if req.Value != nil {
			value = *req.Value
		}
		if req.MaxDiscount != nil {
			maxDiscount = req.MaxDiscount
		}
		if req.ClearMaxDiscount || discountType != promotion.DiscountTypePercent {
			maxDiscount = nil
		}
		if err := coupon.SetDiscount(discountType, value, maxDiscount); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearMinOrderAmount:
		if err := coupon.SetMinOrderAmount(nil); err != nil {
			return nil, err
		}
	case req.MinOrderAmount != nil:
		if err := coupon.SetMinOrderAmount(req.MinOrderAmount); err != nil {
			return nil, err
		}
	}
	if req.UsageLimit != nil {
		if err := coupon.SetUsageLimit(*req.UsageLimit); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearValidity:
		if err := coupon.SetValidity(nil, nil); err != nil {
			return nil, err
		}
	case req.StartsAt != nil || req.ExpiresAt != nil:
		startsAt, expiresAt := coupon.StartsAt, coupon.ExpiresAt
		if req.StartsAt != nil {
			startsAt = req.StartsAt
		}
		if req.ExpiresAt != nil {
			expiresAt = req.ExpiresAt
		}
		if err := coupon.SetValidity(startsAt, expiresAt); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearPartner:
		coupon.AssignPartner(nil)
	case req.PartnerID != nil:
		if err := s.ensurePartner(ctx, *req.PartnerID); err != nil {
			return nil, err
		}
		coupon.AssignPartner(req.PartnerID)
	}

	if err := s.couponRepo.Save(ctx, coupon); err != nil {
		return nil, err
	}
	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// Activate enables a coupon
func (s *CouponService) Activate(ctx context.Context, id uuid.UUID) (*CouponResponse, error) {
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := coupon.Activate(); err != nil {
		return nil, err
	}
	if err := s.couponRepo.Save(ctx, coupon); err != nil {
		return nil, err
	}
	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// Deactivate disables a coupon
func (s *CouponService) Deactivate(ctx context.Context, id uuid.UUID) (*CouponResponse, error) {
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := coupon.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.couponRepo.Save(ctx, coupon); err != nil {
		return nil, err
	}
	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// Delete deletes a coupon. Orders keep the code they were placed with.
func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.couponRepo.Delete(ctx, id)
}

func (s *CouponService) ensureCodeAvailable(ctx context.Context, code string) error {
	exists, err := s.couponRepo.ExistsByCode(ctx, code)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Coupon with this code already exists")
	}
	return nil
}

func (s *CouponService) ensurePartner(ctx context.Context, id uuid.UUID) error {
	if s.partnerRepo == nil {
		return nil
	}
	if _, err := s.partnerRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_PARTNER", "Partner not found")
		}
		return err
	}
	return nil
}
