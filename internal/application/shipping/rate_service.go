package shipping

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
)

// RateService handles shipping rate management and quoting
type RateService struct {
	rateRepo shipping.RateRepository
}

// NewRateService creates a new RateService
func NewRateService(rateRepo shipping.RateRepository) *RateService {
	return &RateService{rateRepo: rateRepo}
}

// Create creates a new shipping rate
func (s *RateService) Create(ctx context.Context, req CreateRateRequest) (*RateResponse, error) {
	rate, err := shipping.NewRate(req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	if err := rate.Update(rate.Name, req.Description, rate.Price); err != nil {
		return nil, err
	}
	if err := rate.SetFreeAbove(req.FreeAboveAmount); err != nil {
		return nil, err
	}
	if err := rate.SetEstimate(req.EstimatedDaysMin, req.EstimatedDaysMax); err != nil {
		return nil, err
	}
	rate.SetSortOrder(req.SortOrder)

	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return nil, err
	}
	resp := ToRateResponse(rate)
	return &resp, nil
}

// GetByID retrieves a shipping rate by ID
func (s *RateService) GetByID(ctx context.Context, id uuid.UUID) (*RateResponse, error) {
	rate, err := s.rateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToRateResponse(rate)
	return &resp, nil
}

// List retrieves shipping rates ordered by sort order, then price
func (s *RateService) List(ctx context.Context, filter RateListFilter) (*shared.Paginated[RateResponse], error) {
	f := shared.DefaultFilter()
	f.OrderBy = ""
	f.PageSize = 100
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.Active != nil {
		f.Filters["active"] = *filter.Active
	}

	rates, err := s.rateRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.rateRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]RateResponse, len(rates))
	for i := range rates {
		items[i] = ToRateResponse(&rates[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// ListActive retrieves the rates offered at checkout
func (s *RateService) ListActive(ctx context.Context) ([]RateResponse, error) {
	active := true
	page, err := s.List(ctx, RateListFilter{Active: &active})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Update updates a shipping rate
func (s *RateService) Update(ctx context.Context, id uuid.UUID, req UpdateRateRequest) (*RateResponse, error) {
	rate, err := s.rateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, description, price := rate.Name, rate.Description, rate.Price
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Price != nil {
		price = *req.Price
	}
	if err := rate.Update(name, description, price); err != nil {
		return nil, err
	}

	switch {
	case req.ClearFreeAbove:
		if err := rate.SetFreeAbove(nil); err != nil {
			return nil, err
		}
	case req.FreeAboveAmount != nil:
		if err := rate.SetFreeAbove(req.FreeAboveAmount); err != nil {
			return nil, err
		}
	}

	if req.EstimatedDaysMin != nil || req.EstimatedDaysMax != nil {
		minDays, maxDays := rate.EstimatedDaysMin, rate.EstimatedDaysMax
		if req.EstimatedDaysMin != nil {
			minDays = *req.EstimatedDaysMin
		}
		if req.EstimatedDaysMax != nil {
			maxDays = *req.EstimatedDaysMax
		}
		if err := rate.SetEstimate(minDays, maxDays); err != nil {
			return nil, err
		}
	}
	if req.SortOrder != nil {
		rate.SetSortOrder(*req.SortOrder)
	}

	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return nil, err
	}
	resp := ToRateResponse(rate)
	return &resp, nil
}

// Activate offers a rate at checkout
func (s *RateService) Activate(ctx context.Context, id uuid.UUID) (*RateResponse, error) {
	rate, err := s.rateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rate.Activate(); err != nil {
		return nil, err
	}
	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return nil, err
	}
	resp := ToRateResponse(rate)
	return &resp, nil
}

// Deactivate withdraws a rate from checkout
func (s *RateService) Deactivate(ctx context.Context, id uuid.UUID) (*RateResponse, error) {
	rate, err := s.rateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rate.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return nil, err
	}
	resp := ToRateResponse(rate)
	return &resp, nil
}

// Delete deletes a shipping rate
func (s *RateService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rateRepo.Delete(ctx, id)
}

// Quote returns the shipping cost of subtotal with the given rate
func (s *RateService) Quote(ctx context.Context, id uuid.UUID, subtotal decimal.Decimal) (*QuoteResponse, error) {
	if subtotal.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SUBTOTAL", "Subtotal cannot be negative")
	}
	rate, err := s.rateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cost, err := rate.Quote(subtotal)
	if err != nil {
		return nil, err
	}
	return &QuoteResponse{
		RateID:   rate.ID,
		RateName: rate.Name,
		Subtotal: subtotal,
		Cost:     cost,
		Free:     cost.IsZero(),
	}, nil
}
