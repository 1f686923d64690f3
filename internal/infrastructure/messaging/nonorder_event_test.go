package messaging

import (
	"time"

	"github.com/google/uuid"
)

type nonOrderEvent struct{}

func (nonOrderEvent) EventID() uuid.UUID     { return uuid.Nil }
func (nonOrderEvent) EventType() string      { return "ProductCreated" }
func (nonOrderEvent) OccurredAt() time.Time  { return time.Time{} }
func (nonOrderEvent) AggregateID() uuid.UUID { return uuid.Nil }
func (nonOrderEvent) AggregateType() string  { return "Product" }
