package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/shared"
)

// PartnerService handles affiliate partner management
type PartnerService struct {
	partnerRepo partner.PartnerRepository
}

// NewPartnerService creates a new PartnerService
func NewPartnerService(partnerRepo partner.PartnerRepository) *PartnerService {
	return &PartnerService{partnerRepo: partnerRepo}
}

// Create creates a new partner
func (s *PartnerService) Create(ctx context.Context, req CreatePartnerRequest) (*PartnerResponse, error) {
	p, err := partner.NewPartner(req.Name, req.Email, req.CouponCode, req.CommissionRate)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCodeAvailable(ctx, p.CouponCode); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		if err := p.Update(p.Name, p.Email, p.CommissionRate, req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.partnerRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToPartnerResponse(p)
	return &resp, nil
}

// GetByID retrieves a partner by ID
func (s *PartnerService) GetByID(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPartnerResponse(p)
	return &resp, nil
}

// List retrieves partners
func (s *PartnerService) List(ctx context.Context, filter PartnerListFilter) (*shared.Paginated[PartnerResponse], error) {
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

	partners, err := s.partnerRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.partnerRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]PartnerResponse, len(partners))
	for i := range partners {
		items[i] = ToPartnerResponse(&partners[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update updates a partner
func (s *PartnerService) Update(ctx context.Context, id uuid.UUID, req UpdatePartnerRequest) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, email, rate, notes := p.Name, p.Email, p.CommissionRate, p.Notes
	if req.Name != nil {
		name = *req.Name
	}
	if req.Email != nil {
		email = *req.Email
	}
	if req.CommissionRate != nil {
		rate = *req.CommissionRate
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := p.Update(name, email, rate, notes); err != nil {
		return nil, err
	}

	if req.CouponCode != nil && partner.NormalizeCode(*req.CouponCode) != p.CouponCode {
		if err := p.SetCouponCode(*req.CouponCode); err != nil {
			return nil, err
		}
		if err := s.ensureCodeAvailable(ctx, p.CouponCode); err != nil {
			return nil, err
		}
	}

	if err := s.partnerRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToPartnerResponse(p)
	return &resp, nil
}

// Activate resumes commission tracking for a partner
func (s *PartnerService) Activate(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Activate(); err != nil {
		return nil, err
	}
	if err := s.partnerRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToPartnerResponse(p)
	return &resp, nil
}

// Deactivate stops commission tracking for a partner
func (s *PartnerService) Deactivate(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.partnerRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToPartnerResponse(p)
	return &resp, nil
}

// Delete deletes a partner
func (s *PartnerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.partnerRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.partnerRepo.Delete(ctx, id)
}

func (s *PartnerService) ensureCodeAvailable(ctx context.Context, code string) error {
	exists, err := s.partnerRepo.ExistsByCouponCode(ctx, code)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Partner with this coupon code already exists")
	}
	return nil
}
