package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxLineQuantity caps the quantity of a single cart line
const MaxLineQuantity = 999

// MaxLines caps the number of distinct products in a cart
const MaxLines = 100

// ErrCartNotFound is returned for unknown or expired carts
var ErrCartNotFound = shared.NewDomainError("CART_NOT_FOUND", "Cart not found or expired")

// Item is a product line in a cart. Name, image and price are refreshed
// from the catalog whenever the cart is read.
type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns unit price times quantity
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

// Cart is a shopper's basket, held in a session store rather than the
// database and identified by an opaque token.
type Cart struct {
	ID         uuid.UUID `json:"id"`
	Items      []Item    `json:"items"`
	CouponCode string    `json:"coupon_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// New creates an empty cart
func New() *Cart {
	now := time.Now()
	return &Cart{
		ID:        uuid.New(),
		Items:     make([]Item, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Find returns the index of the line for productID, or -1
func (c *Cart) Find(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// QuantityOf returns the quantity of productID in the cart
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	if i := c.Find(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// Add adds quantity units of item, merging with an existing line
func (c *Cart) Add(item Item) error {
	if item.Quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i := c.Find(item.ProductID); i >= 0 {
		merged := c.Items[i].Quantity + item.Quantity
		if merged > MaxLineQuantity {
			return shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the per-item limit")
		}
		item.Quantity = merged
		c.Items[i] = item
		c.UpdatedAt = time.Now()
		return nil
	}
	if item.Quantity > MaxLineQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the per-item limit")
	}
	if len(c.Items) >= MaxLines {
		return shared.NewDomainError("CART_FULL", "Cart cannot hold more products")
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = time.Now()
	return nil
}

// SetQuantity replaces the quantity of a line; zero removes it
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) error {
	if quantity < 0 || quantity > MaxLineQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity is out of range")
	}
	i := c.Find(productID)
	if i < 0 {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Product is not in the cart")
	}
	if quantity == 0 {
		return c.Remove(productID)
	}
	c.Items[i].Quantity = quantity
	c.UpdatedAt = time.Now()
	return nil
}

// Remove deletes the line for productID
func (c *Cart) Remove(productID uuid.UUID) error {
	i := c.Find(productID)
	if i < 0 {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Product is not in the cart")
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.UpdatedAt = time.Now()
	return nil
}

// Clear empties the cart and drops the coupon
func (c *Cart) Clear() {
	c.Items = make([]Item, 0)
	c.CouponCode = ""
	c.UpdatedAt = time.Now()
}

// SetCoupon stores the single coupon code; it replaces any previous code
func (c *Cart) SetCoupon(code string) {
	c.CouponCode = code
	c.UpdatedAt = time.Now()
}

// Subtotal sums the line totals
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount returns the number of units in the cart
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Store keeps carts between requests
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
}
