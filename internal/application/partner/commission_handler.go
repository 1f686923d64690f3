package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CommissionKey deduplicates commission accrual per order. Only the
// delivered transition shares the per-order key; every other event is
// keyed by its own id so it cannot consume it.
func CommissionKey(event shared.DomainEvent) string {
	key := "commission:" + event.AggregateID().String()
	if changed, ok := event.(*order.OrderStatusChangedEvent); ok && changed.NewStatus == order.StatusDelivered {
		return key
	}
	return key + ":" + event.EventID().String()
}

// CommissionHandler accrues partner commission when an attributed order
// is delivered
type CommissionHandler struct {
	partnerRepo partner.PartnerRepository
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewCommissionHandler creates a new CommissionHandler. events may be nil.
func NewCommissionHandler(partnerRepo partner.PartnerRepository, events shared.EventPublisher, logger *zap.Logger) *CommissionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommissionHandler{
		partnerRepo: partnerRepo,
		events:      events,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CommissionHandler) EventTypes() []string {
	return []string{order.EventTypeOrderStatusChanged}
}

// Handle records the sale on the partner the order is attributed to
func (h *CommissionHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*order.OrderStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderStatusChanged, event.EventType())
	}
	if changed.NewStatus != order.StatusDelivered || changed.Order.PartnerID == nil {
		return nil
	}

	snapshot := changed.Order
	p, err := h.partnerRepo.FindByID(ctx, *snapshot.PartnerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("partner of delivered order no longer exists",
				zap.String("order_id", snapshot.OrderID.String()),
				zap.String("partner_id", snapshot.PartnerID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to load partner: %w", err)
	}
	if !p.Active {
		h.logger.Info("skipping commission for inactive partner",
			zap.String("order_id", snapshot.OrderID.String()),
			zap.String("partner_id", p.ID.String()),
		)
		return nil
	}

	sale := snapshot.Subtotal.Sub(snapshot.DiscountAmount)
	commission, err := p.RecordSale(snapshot.OrderID, sale)
	if err != nil {
		return err
	}
	if err := h.partnerRepo.AccrueSale(ctx, p.ID, sale, commission); err != nil {
		return fmt.Errorf("failed to accrue partner commission: %w", err)
	}

	h.logger.Info("partner commission accrued",
		zap.String("order_id", snapshot.OrderID.String()),
		zap.String("order_number", snapshot.OrderNumber),
		zap.String("partner_id", p.ID.String()),
		zap.String("sale_amount", sale.String()),
		zap.String("commission", commission.String()),
	)

	if h.events != nil {
		if err := h.events.Publish(ctx, p.GetDomainEvents()...); err != nil {
			h.logger.Warn("failed to publish commission event", zap.Error(err))
		}
	}
	p.ClearDomainEvents()
	return nil
}

var _ shared.EventHandler = (*CommissionHandler)(nil)
