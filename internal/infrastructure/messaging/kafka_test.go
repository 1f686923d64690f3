package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	deadline bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, w.deadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func placedOrder(t *testing.T) *order.Order {
	t.Helper()
	customer, err := order.NewCustomer("Ada Lovelace", "ada@example.com", "")
	require.NoError(t, err)
	address, err := valueobject.NewAddress("1 Main St", "", "Springfield", "IL", "62701", "US")
	require.NoError(t, err)
	o, err := order.NewOrder("ORD-20260101-AAAAAA", customer, address, "USD", order.PaymentMethodManual)
	require.NoError(t, err)
	require.NoError(t, o.AddItem(o.ID, "Ceramic Mug", "MUG-1", decimal.RequireFromString("12.00"), 2))
	require.NoError(t, o.Place())
	return o
}

func TestOrderEventPublisher_Handle(t *testing.T) {
	writer := &recordingWriter{}
	p := newOrderEventPublisher(writer, time.Second, zap.NewNop())

	o := placedOrder(t)
	require.NoError(t, o.TransitionTo(order.StatusProcessing, "", ""))
	events := o.GetDomainEvents()
	require.Len(t, events, 2)

	for _, e := range events {
		require.NoError(t, p.Handle(context.Background(), e))
	}

	require.Len(t, writer.messages, 2)
	assert.True(t, writer.deadline)

	msg := writer.messages[1]
	assert.Equal(t, o.ID.String(), string(msg.Key))

	var decoded OrderEventMessage
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, order.EventTypeOrderStatusChanged, decoded.Type)
	assert.Equal(t, order.StatusPending, decoded.PreviousStatus)
	assert.Equal(t, order.StatusProcessing, decoded.Order.Status)
	assert.Equal(t, "ORD-20260101-AAAAAA", decoded.Order.OrderNumber)
	assert.Equal(t, kafka.Header{Key: "event_type", Value: []byte(order.EventTypeOrderStatusChanged)}, msg.Headers[0])
}

func TestOrderEventPublisher_FailuresAreLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	writer := &recordingWriter{err: errors.New("broker unavailable")}
	p := newOrderEventPublisher(writer, time.Second, zap.New(core))

	o := placedOrder(t)
	err := p.Handle(context.Background(), o.GetDomainEvents()[0])

	require.NoError(t, err)
	entries := logs.FilterMessage("failed to stream order event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, o.ID.String(), fields["order_id"])
	assert.Equal(t, "kafka", fields["notifier"])
}

func TestOrderEventPublisher_IgnoresOtherEvents(t *testing.T) {
	writer := &recordingWriter{}
	p := newOrderEventPublisher(writer, 0, nil)

	require.NoError(t, p.Handle(context.Background(), nonOrderEvent{}))
	assert.Empty(t, writer.messages)
	assert.ElementsMatch(t, order.NotifiableEventTypes, p.EventTypes())
}
