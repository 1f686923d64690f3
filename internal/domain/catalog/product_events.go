package catalog

import (
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	EventTypeProductCreated      = "ProductCreated"
	EventTypeProductStockChanged = "ProductStockChanged"

	AggregateTypeProduct = "Product"
)

// ProductCreatedEvent is raised when a product is added to the catalog
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Price string `json:"price"`
}

// NewProductCreatedEvent creates a ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		Name:            p.Name,
		Slug:            p.Slug,
		Price:           p.Price.String(),
	}
}

// ProductStockChangedEvent is raised when the stock level changes
type ProductStockChangedEvent struct {
	shared.BaseDomainEvent
	OldQuantity int `json:"old_quantity"`
	NewQuantity int `json:"new_quantity"`
}

// NewProductStockChangedEvent creates a ProductStockChangedEvent
func NewProductStockChangedEvent(p *Product, oldQuantity int) *ProductStockChangedEvent {
	return &ProductStockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStockChanged, AggregateTypeProduct, p.ID),
		OldQuantity:     oldQuantity,
		NewQuantity:     p.StockQuantity,
	}
}
