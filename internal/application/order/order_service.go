package order

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderService handles merchant order management and customer lookups
type OrderService struct {
	orders   order.OrderRepository
	events   shared.EventPublisher
	currency valueobject.Currency
	logger   *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orders order.OrderRepository, events shared.EventPublisher, currency valueobject.Currency, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &OrderService{
		orders:   orders,
		events:   events,
		currency: currency,
		logger:   logger,
	}
}

// List returns a page of orders
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) (*shared.Paginated[OrderResponse], error) {
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
		f.OrderDir = strings.ToLower(filter.OrderDir)
	}
	f.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" {
		f.Filters["status"] = order.Status(filter.Status)
	}
	if filter.PaymentStatus != "" {
		f.Filters["payment_status"] = order.PaymentStatus(filter.PaymentStatus)
	}
	if filter.From != nil {
		f.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		// a date-only bound includes the whole day
		f.Filters["to"] = filter.To.AddDate(0, 0, 1)
	}

	orders, err := s.orders.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetByID returns one order
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Lookup finds an order by number for the customer who placed it. A wrong
// email is reported exactly like an unknown number.
func (s *OrderService) Lookup(ctx context.Context, req LookupRequest) (*PublicOrderResponse, error) {
	number := strings.ToUpper(strings.TrimSpace(req.Number))
	o, err := s.orders.FindByOrderNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(o.Customer.Email, strings.TrimSpace(req.Email)) {
		return nil, shared.ErrNotFound
	}
	resp := ToPublicOrderResponse(o)
	return &resp, nil
}

// UpdateStatus applies a status transition, saves it and publishes
// OrderStatusChanged. Notifications run asynchronously off the event bus
// and never affect the result. Cancelling goes through Cancel so stock and
// coupon usage are returned.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (resp *OrderResponse, err error) {
	target := order.Status(req.Status)
	if target == order.StatusCancelled {
		return s.Cancel(ctx, id, CancelOrderRequest{Reason: req.Reason})
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status",
		telemetry.SpanAttrOrderID, id.String(),
		telemetry.SpanAttrOrderStatus, req.Status,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := o.Status
	if err := o.TransitionTo(target, req.TrackingNumber, req.Reason); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		logger.OrderID(o.ID),
		logger.OrderNumber(o.OrderNumber),
		zap.String("old_status", string(old)),
		zap.String("new_status", string(o.Status)),
	)
	s.publish(ctx, o)

	result := ToOrderResponse(o)
	return &result, nil
}

// Cancel cancels the order, returns its items to stock and releases its
// coupon redemption
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.orders.SaveCancelled(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled",
		logger.OrderID(o.ID),
		logger.OrderNumber(o.OrderNumber),
		zap.String("reason", o.CancelReason),
	)
	s.publish(ctx, o)

	resp := ToOrderResponse(o)
	return &resp, nil
}

// UpdateNotes replaces the merchant notes
func (s *OrderService) UpdateNotes(ctx context.Context, id uuid.UUID, req UpdateNotesRequest) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.SetNotes(req.Notes)
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Stats returns order counts and revenue per status. Every status is
// present in the result, with zeros where there are no orders.
func (s *OrderService) Stats(ctx context.Context, filter StatsFilter) (*StatsResponse, error) {
	to := filter.To
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	stats, err := s.orders.Stats(ctx, filter.From, to)
	if err != nil {
		return nil, err
	}

	resp := &StatsResponse{
		TotalOrders:     stats.TotalOrders,
		ByStatus:        make(map[string]int64, len(order.AllStatuses)),
		RevenueByStatus: make(map[string]decimal.Decimal, len(order.AllStatuses)),
		PaidOrders:      stats.PaidOrders,
		PaidRevenue:     stats.PaidRevenue,
		Currency:        string(s.currency),
	}
	for _, status := range order.AllStatuses {
		resp.ByStatus[string(status)] = stats.ByStatus[status]
		revenue, ok := stats.RevenueByStatus[status]
		if !ok {
			revenue = decimal.Zero
		}
		resp.RevenueByStatus[string(status)] = revenue
	}
	return resp, nil
}

func (s *OrderService) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	if len(events) == 0 || s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events",
			logger.OrderID(o.ID),
			zap.Error(err),
		)
	}
	o.ClearDomainEvents()
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
