package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product is a sellable item in the catalog
type Product struct {
	shared.BaseAggregateRoot
	Name           string           `gorm:"type:varchar(200);not null"`
	Slug           string           `gorm:"type:varchar(120);not null;uniqueIndex"`
	SKU            *string          `gorm:"column:sku;type:varchar(64);uniqueIndex"`
	Description    string           `gorm:"type:text"`
	Price          decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CompareAtPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	StockQuantity  int              `gorm:"not null;default:0"`
	CategoryID     *uuid.UUID       `gorm:"type:uuid;index"`
	ImageKey       string           `gorm:"type:varchar(300)"`
	ImageURL       string           `gorm:"type:varchar(500)"`
	Active         bool             `gorm:"not null;default:true"`
	Featured       bool             `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates an active product with zero stock
func NewProduct(name, slug string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	slug, err := resolveSlug(name, slug)
	if err != nil {
		return nil, err
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Price:             price.Round(2),
		Active:            true,
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update changes the descriptive fields
func (p *Product) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = name
	p.Description = description
	p.touch()
	return nil
}

// SetSlug replaces the slug
func (p *Product) SetSlug(slug string) error {
	if !shared.IsValidSlug(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, digits and dashes")
	}
	p.Slug = slug
	p.touch()
	return nil
}

// SetSKU sets or clears the stock keeping unit
func (p *Product) SetSKU(sku string) error {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		p.SKU = nil
		p.touch()
		return nil
	}
	if len(sku) > 64 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 64 characters")
	}
	p.SKU = &sku
	p.touch()
	return nil
}

// SetPricing sets the selling price and the optional compare-at price.
// A compare-at price must be higher than the selling price.
func (p *Product) SetPricing(price decimal.Decimal, compareAt *decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if compareAt != nil {
		if compareAt.LessThanOrEqual(price) {
			return shared.NewDomainError("INVALID_COMPARE_AT_PRICE", "Compare-at price must be greater than the price")
		}
		v := compareAt.Round(2)
		compareAt = &v
	}
	p.Price = price.Round(2)
	p.CompareAtPrice = compareAt
	p.touch()
	return nil
}

// SetCategory assigns or clears the category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.touch()
}

// SetImage stores the object key and public URL of the product image
func (p *Product) SetImage(key, url string) error {
	if len(key) > 300 || len(url) > 500 {
		return shared.NewDomainError("INVALID_IMAGE", "Image reference is too long")
	}
	p.ImageKey = key
	p.ImageURL = url
	p.touch()
	return nil
}

// SetFeatured flags the product for the storefront home page
func (p *Product) SetFeatured(featured bool) {
	p.Featured = featured
	p.touch()
}

// SetStock replaces the stock level
func (p *Product) SetStock(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock quantity cannot be negative")
	}
	return p.AdjustStock(quantity - p.StockQuantity)
}

// AdjustStock changes the stock level by delta
func (p *Product) AdjustStock(delta int) error {
	if delta == 0 {
		return nil
	}
	next := p.StockQuantity + delta
	if next < 0 {
		return shared.ErrInsufficientStock
	}
	old := p.StockQuantity
	p.StockQuantity = next
	p.touch()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old))
	return nil
}

// Activate publishes the product
func (p *Product) Activate() error {
	if p.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.Active = true
	p.touch()
	return nil
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() error {
	if !p.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.Active = false
	p.touch()
	return nil
}

// IsPurchasable reports whether quantity units can be ordered right now
func (p *Product) IsPurchasable(quantity int) bool {
	return p.Active && quantity > 0 && p.StockQuantity >= quantity
}

// CheckPurchasable returns the domain error explaining why quantity units
// cannot be ordered, or nil.
func (p *Product) CheckPurchasable(quantity int) error {
	switch {
	case quantity <= 0:
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	case !p.Active:
		return shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product "+p.Name+" is not available")
	case p.StockQuantity < quantity:
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock for "+p.Name)
	}
	return nil
}

// IsOnSale reports whether a compare-at price is shown
func (p *Product) IsOnSale() bool {
	return p.CompareAtPrice != nil && p.CompareAtPrice.GreaterThan(p.Price)
}

// SKUValue returns the SKU or an empty string
func (p *Product) SKUValue() string {
	if p.SKU == nil {
		return ""
	}
	return *p.SKU
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}
	return nil
}
