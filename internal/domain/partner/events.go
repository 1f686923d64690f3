package partner

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	EventTypeCommissionAccrued = "PartnerCommissionAccrued"
	AggregateTypePartner       = "Partner"
)

// CommissionAccruedEvent is raised when a delivered order earns commission
type CommissionAccruedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID       `json:"order_id"`
	SaleAmount decimal.Decimal `json:"sale_amount"`
	Commission decimal.Decimal `json:"commission"`
}

// NewCommissionAccruedEvent creates a CommissionAccruedEvent
func NewCommissionAccruedEvent(p *Partner, orderID uuid.UUID, sale, commission decimal.Decimal) *CommissionAccruedEvent {
	return &CommissionAccruedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionAccrued, AggregateTypePartner, p.ID),
		OrderID:         orderID,
		SaleAmount:      sale,
		Commission:      commission,
	}
}
