package logger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_NotFound(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	l.Info("dropped")
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-42")
	FromContext(ctx).Info("checkout")

	assert.Equal(t, "req-42", GetRequestID(ctx))
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "req-42", recorded.All()[0].ContextMap()["request_id"])
}

func TestWithAdminID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-1")
	ctx, _ = WithAdminID(ctx, FromContext(ctx), "admin-7")
	FromContext(ctx).Info("status updated")

	assert.Equal(t, "admin-7", GetAdminID(ctx))
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "admin-7", fields["admin_id"])
}

func TestFromContext_AddsTraceCorrelation(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	core, recorded := observer.New(zapcore.InfoLevel)
	ctx, span := tp.Tracer("test").Start(WithContext(context.Background(), zap.New(core)), "op")
	defer span.End()

	FromContext(ctx).Info("traced")

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestFieldHelpers(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	id := uuid.New()

	zap.New(core).Warn("delivery failed",
		OrderID(id), OrderNumber("ORD-20260101-ABC123"), EventType("order.paid"), Notifier("webhook"))

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, id.String(), fields["order_id"])
	assert.Equal(t, "ORD-20260101-ABC123", fields["order_number"])
	assert.Equal(t, "order.paid", fields["event_type"])
	assert.Equal(t, "webhook", fields["notifier"])
}
