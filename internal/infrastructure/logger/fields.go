package logger

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Field helpers for the keys that show up across order and integration logs.

func OrderID(id uuid.UUID) zap.Field {
	return zap.String("order_id", id.String())
}

func OrderNumber(number string) zap.Field {
	return zap.String("order_number", number)
}

func EventType(eventType string) zap.Field {
	return zap.String("event_type", eventType)
}

func EventID(id uuid.UUID) zap.Field {
	return zap.String("event_id", id.String())
}

// Notifier names the outbound integration a log line belongs to (webhook, chatwoot, kafka).
func Notifier(name string) zap.Field {
	return zap.String("notifier", name)
}
