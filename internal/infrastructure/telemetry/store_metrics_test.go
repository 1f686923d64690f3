package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newMetricsReader(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range data.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestNewStoreMetrics_NilMeter(t *testing.T) {
	_, err := NewStoreMetrics(nil, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestStoreMetrics_Handle(t *testing.T) {
	mp, reader := newMetricsReader(t)
	sm, err := NewStoreMetrics(mp.Meter("storefront"), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	snapshot := order.Snapshot{
		OrderID:        uuid.New(),
		Currency:       "USD",
		Total:          decimal.RequireFromString("29.99"),
		DiscountAmount: decimal.RequireFromString("2.50"),
		Items: []order.SnapshotItem{
			{ProductID: uuid.New(), Quantity: 2},
			{ProductID: uuid.New(), Quantity: 1},
		},
	}
	created := &order.OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderCreated, order.AggregateTypeOrder, snapshot.OrderID),
		Order:           snapshot,
	}
	paid := &order.OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderPaid, order.AggregateTypeOrder, snapshot.OrderID),
		Order:           snapshot,
	}
	shipped := &order.OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderStatusChanged, order.AggregateTypeOrder, snapshot.OrderID),
		OldStatus:       order.StatusProcessing,
		NewStatus:       order.StatusShipped,
		Order:           snapshot,
	}

	for _, e := range []shared.DomainEvent{created, paid, shipped} {
		require.NoError(t, sm.Handle(ctx, e))
	}

	assert.Equal(t, int64(1), sumOf(t, reader, "storefront_order_created_total"))
	assert.Equal(t, int64(2999), sumOf(t, reader, "storefront_order_amount_total"))
	assert.Equal(t, int64(250), sumOf(t, reader, "storefront_order_discount_total"))
	assert.Equal(t, int64(3), sumOf(t, reader, "storefront_order_items_total"))
	assert.Equal(t, int64(1), sumOf(t, reader, "storefront_order_paid_total"))
	assert.Equal(t, int64(1), sumOf(t, reader, "storefront_order_status_changes_total"))
	assert.ElementsMatch(t, order.NotifiableEventTypes, sm.EventTypes())
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1250), minorUnits(decimal.RequireFromString("12.5")))
	assert.Equal(t, int64(1), minorUnits(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(0), minorUnits(decimal.Zero))
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), config.TelemetryConfig{
		Enabled:        true,
		MetricsEnabled: false,
		ServiceName:    "storefront-test",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}
