package shipping

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRateRepository is a mock implementation of RateRepository
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Rate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Rate), args.Error(1)
}

func (m *MockRateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]shipping.Rate, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]shipping.Rate), args.Error(1)
}

func (m *MockRateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateRepository) Save(ctx context.Context, rate *shipping.Rate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestRate(t *testing.T, price string, freeAbove string) *shipping.Rate {
	t.Helper()
	r, err := shipping.NewRate("Standard", decimal.RequireFromString(price))
	require.NoError(t, err)
	if freeAbove != "" {
		amount := decimal.RequireFromString(freeAbove)
		require.NoError(t, r.SetFreeAbove(&amount))
	}
	return r
}

func TestRateService_Quote(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		freeAbove string
		subtotal  string
		active    bool
		wantCost  string
		wantCode  string
	}{
		{name: "below threshold pays", freeAbove: "50", subtotal: "49.99", active: true, wantCost: "5.9"},
		{name: "at threshold is free", freeAbove: "50", subtotal: "50", active: true, wantCost: "0"},
		{name: "no threshold always pays", subtotal: "1000", active: true, wantCost: "5.9"},
		{name: "inactive rate", subtotal: "10", active: false, wantCode: "SHIPPING_RATE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRateRepository)
			svc := NewRateService(repo)
			rate := newTestRate(t, "5.90", tt.freeAbove)
			if !tt.active {
				require.NoError(t, rate.Deactivate())
			}
			repo.On("FindByID", ctx, rate.ID).Return(rate, nil)

			quote, err := svc.Quote(ctx, rate.ID, decimal.RequireFromString(tt.subtotal))

			if tt.wantCode != "" {
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.wantCode, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.True(t, quote.Cost.Equal(decimal.RequireFromString(tt.wantCost)), "cost %s", quote.Cost)
			assert.Equal(t, quote.Cost.IsZero(), quote.Free)
		})
	}
}

func TestRateService_QuoteRejectsNegativeSubtotal(t *testing.T) {
	svc := NewRateService(new(MockRateRepository))

	_, err := svc.Quote(context.Background(), uuid.New(), decimal.NewFromInt(-1))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_SUBTOTAL", domainErr.Code)
}

func TestRateService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepository)
	svc := NewRateService(repo)
	repo.On("Save", ctx, mock.AnythingOfType("*shipping.Rate")).Return(nil)

	resp, err := svc.Create(ctx, CreateRateRequest{
		Name:             "Express",
		Description:      "Next day",
		Price:            decimal.RequireFromString("12.50"),
		EstimatedDaysMin: 1,
		EstimatedDaysMax: 2,
		SortOrder:        2,
	})

	require.NoError(t, err)
	assert.Equal(t, "Next day", resp.Description)
	assert.Equal(t, 2, resp.EstimatedDaysMax)
	assert.Equal(t, 2, resp.SortOrder)

	_, err = svc.Create(ctx, CreateRateRequest{Name: "Broken", EstimatedDaysMin: 5, EstimatedDaysMax: 2})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ESTIMATE", domainErr.Code)
}

func TestRateService_Update(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepository)
	svc := NewRateService(repo)
	rate := newTestRate(t, "5", "50")
	price := decimal.NewFromInt(7)
	repo.On("FindByID", ctx, rate.ID).Return(rate, nil)
	repo.On("Save", ctx, rate).Return(nil)

	resp, err := svc.Update(ctx, rate.ID, UpdateRateRequest{Price: &price, ClearFreeAbove: true})

	require.NoError(t, err)
	assert.True(t, resp.Price.Equal(price))
	assert.Nil(t, resp.FreeAboveAmount)
	assert.Equal(t, "Standard", resp.Name)
}

func TestRateService_ListActiveUsesDefaultOrdering(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepository)
	svc := NewRateService(repo)

	matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.OrderBy == "" && f.Filters["active"] == true
	})
	repo.On("FindAll", ctx, matchFilter).Return([]shipping.Rate{*newTestRate(t, "5", "")}, nil)
	repo.On("Count", ctx, matchFilter).Return(int64(1), nil)

	rates, err := svc.ListActive(ctx)

	require.NoError(t, err)
	assert.Len(t, rates, 1)
}
