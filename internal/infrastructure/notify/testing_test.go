package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/order"
)

func sampleNotification(t *testing.T, eventType string) integration.Notification {
	t.Helper()
	return integration.Notification{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
		OldStatus:  order.StatusProcessing,
		Order: order.Snapshot{
			OrderID:        uuid.New(),
			OrderNumber:    "ORD-20260304-ABC234",
			Status:         order.StatusShipped,
			PaymentStatus:  order.PaymentStatusPaid,
			CustomerName:   "Ada Lovelace",
			CustomerEmail:  "ada@example.com",
			Currency:       "USD",
			Subtotal:       decimal.RequireFromString("25.00"),
			DiscountAmount: decimal.Zero,
			ShippingAmount: decimal.RequireFromString("5.00"),
			Total:          decimal.RequireFromString("30.00"),
			TrackingNumber: "1Z999",
			Items:          []order.SnapshotItem{},
		},
	}
}
