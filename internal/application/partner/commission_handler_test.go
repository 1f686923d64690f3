package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func statusChanged(partnerID *uuid.UUID, from, to order.Status) *order.OrderStatusChangedEvent {
	orderID := uuid.New()
	return &order.OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderStatusChanged, order.AggregateTypeOrder, orderID),
		OldStatus:       from,
		NewStatus:       to,
		Order: order.Snapshot{
			OrderID:        orderID,
			OrderNumber:    "SF-20260101-ABC123",
			Status:         to,
			Subtotal:       decimal.NewFromInt(200),
			DiscountAmount: decimal.NewFromInt(20),
			ShippingAmount: decimal.NewFromInt(10),
			Total:          decimal.NewFromInt(190),
			PartnerID:      partnerID,
		},
	}
}

func TestCommissionHandler_AccruesOnDelivered(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPartnerRepository)
	publisher := &recordingPublisher{}
	h := NewCommissionHandler(repo, publisher, zap.NewNop())

	p := newTestPartner(t)
	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("AccrueSale", ctx, p.ID, decimalEq("180"), decimalEq("18")).Return(nil)

	err := h.Handle(ctx, statusChanged(&p.ID, order.StatusShipped, order.StatusDelivered))

	require.NoError(t, err)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, partner.EventTypeCommissionAccrued, publisher.events[0].EventType())
	assert.Empty(t, p.GetDomainEvents())
}

func TestCommissionHandler_Ignores(t *testing.T) {
	ctx := context.Background()
	partnerID := uuid.New()

	tests := []struct {
		name  string
		event shared.DomainEvent
	}{
		{"non-delivered transition", statusChanged(&partnerID, order.StatusProcessing, order.StatusShipped)},
		{"order without partner", statusChanged(nil, order.StatusShipped, order.StatusDelivered)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPartnerRepository)
			h := NewCommissionHandler(repo, nil, nil)

			require.NoError(t, h.Handle(ctx, tt.event))
			repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		})
	}
}

func TestCommissionHandler_SkipsMissingOrInactivePartner(t *testing.T) {
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		h := NewCommissionHandler(repo, nil, nil)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		require.NoError(t, h.Handle(ctx, statusChanged(&id, order.StatusShipped, order.StatusDelivered)))
	})

	t.Run("inactive", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		h := NewCommissionHandler(repo, nil, nil)
		p := newTestPartner(t)
		require.NoError(t, p.Deactivate())
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		require.NoError(t, h.Handle(ctx, statusChanged(&p.ID, order.StatusShipped, order.StatusDelivered)))
		repo.AssertNotCalled(t, "AccrueSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCommissionHandler_PropagatesRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPartnerRepository)
	h := NewCommissionHandler(repo, nil, nil)
	id := uuid.New()
	repo.On("FindByID", ctx, id).Return(nil, errors.New("connection reset"))

	err := h.Handle(ctx, statusChanged(&id, order.StatusShipped, order.StatusDelivered))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestCommissionHandler_RejectsOtherEvents(t *testing.T) {
	h := NewCommissionHandler(new(MockPartnerRepository), nil, nil)
	other := &order.OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderPaid, order.AggregateTypeOrder, uuid.New()),
	}

	assert.Error(t, h.Handle(context.Background(), other))
	assert.Equal(t, []string{order.EventTypeOrderStatusChanged}, h.EventTypes())
}

func TestCommissionHandler_AccrueErrorPropagates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPartnerRepository)
	h := NewCommissionHandler(repo, nil, nil)
	p := newTestPartner(t)
	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("AccrueSale", ctx, p.ID, mock.Anything, mock.Anything).Return(shared.ErrNotFound)

	err := h.Handle(ctx, statusChanged(&p.ID, order.StatusShipped, order.StatusDelivered))

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCommissionKey(t *testing.T) {
	delivered := statusChanged(nil, order.StatusShipped, order.StatusDelivered)
	assert.Equal(t, "commission:"+delivered.Order.OrderID.String(), CommissionKey(delivered))

	shipped := statusChanged(nil, order.StatusProcessing, order.StatusShipped)
	assert.Equal(t, "commission:"+shipped.Order.OrderID.String()+":"+shipped.EventID().String(), CommissionKey(shipped))
}

func decimalEq(want string) interface{} {
	expected := decimal.RequireFromString(want)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(expected) })
}
