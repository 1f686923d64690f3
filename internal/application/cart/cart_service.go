package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CartService manages storefront carts. Prices, names and images are
// always taken from the catalog, never from what the cart stored.
type CartService struct {
	store     cart.Store
	products  catalog.ProductRepository
	validator *promotion.Validator
	images    *catalogapp.ImageResolver
	currency  valueobject.Currency
	logger    *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	store cart.Store,
	products catalog.ProductRepository,
	validator *promotion.Validator,
	images *catalogapp.ImageResolver,
	currency valueobject.Currency,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &CartService{
		store:     store,
		products:  products,
		validator: validator,
		images:    images,
		currency:  currency,
		logger:    logger,
	}
}

// Create starts an empty cart
func (s *CartService) Create(ctx context.Context) (*CartResponse, error) {
	c := cart.New()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.summarize(ctx, c, nil)
}

// Get returns the cart priced from the current catalog
func (s *CartService) Get(ctx context.Context, id uuid.UUID) (*CartResponse, error) {
	c, products, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, c, products)
}

// Load returns the refreshed cart for checkout
func (s *CartService) Load(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	c, _, err := s.load(ctx, id)
	return c, err
}

// AddItem adds quantity units of a product, merging with an existing line.
// The resulting quantity must be purchasable.
func (s *CartService) AddItem(ctx context.Context, id uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	c, products, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	if err := product.CheckPurchasable(c.QuantityOf(product.ID) + req.Quantity); err != nil {
		return nil, err
	}

	if err := c.Add(s.itemFor(ctx, product, req.Quantity)); err != nil {
		return nil, err
	}
	products[product.ID] = product
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.summarize(ctx, c, products)
}

// UpdateItem sets the quantity of a line; 0 removes it
func (s *CartService) UpdateItem(ctx context.Context, id, productID uuid.UUID, req UpdateItemRequest) (*CartResponse, error) {
	c, products, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Quantity > 0 {
		product, ok := products[productID]
		if !ok {
			return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Product is not in the cart")
		}
		if err := product.CheckPurchasable(req.Quantity); err != nil {
			return nil, err
		}
	}
	if err := c.SetQuantity(productID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.summarize(ctx, c, products)
}

// RemoveItem removes a line from the cart
func (s *CartService) RemoveItem(ctx context.Context, id, productID uuid.UUID) (*CartResponse, error) {
	c, products, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(productID); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.summarize(ctx, c, products)
}

// Clear empties the cart and drops its coupon
func (s *CartService) Clear(ctx context.Context, id uuid.UUID) (*CartResponse, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Clear()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.summarize(ctx, c, nil)
}

// Discard deletes the cart after it has been turned into an order
func (s *CartService) Discard(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// ApplyCoupon validates code against the current subtotal and stores it,
// replacing any previous coupon
func (s *CartService) ApplyCoupon(ctx context.Context, id uuid.UUID, req ApplyCouponRequest) (*CartResponse, error) {
	c, products, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("CART_EMPTY", "Add items before applying a coupon")
	}
	discount, _, err := s.validator.Validate(ctx, req.Code, c.Subtotal())
	if err != nil {
		return nil, err
	}
	c.SetCoupon(discount.Code)
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.summarize(ctx, c, products)
}

// RemoveCoupon drops the coupon from the cart
func (s *CartService) RemoveCoupon(ctx context.Context, id uuid.UUID) (*CartResponse, error) {
	c, products, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	c.SetCoupon("")
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.summarize(ctx, c, products)
}

// load reads the cart and refreshes every line from the catalog. Lines
// whose product no longer exists are dropped.
func (s *CartService) load(ctx context.Context, id uuid.UUID) (*cart.Cart, map[uuid.UUID]*catalog.Product, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(c.Items))
	if c.IsEmpty() {
		return c, products, nil
	}

	ids := make([]uuid.UUID, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for i := range found {
		products[found[i].ID] = &found[i]
	}

	items := c.Items[:0]
	for _, item := range c.Items {
		product, ok := products[item.ProductID]
		if !ok {
			s.logger.Info("dropping deleted product from cart",
				zap.String("cart_id", c.ID.String()),
				zap.String("product_id", item.ProductID.String()),
			)
			continue
		}
		items = append(items, s.itemFor(ctx, product, item.Quantity))
	}
	c.Items = items
	return c, products, nil
}

func (s *CartService) itemFor(ctx context.Context, p *catalog.Product, quantity int) cart.Item {
	return cart.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		ImageURL:  s.images.Resolve(ctx, p),
		UnitPrice: p.Price,
		Quantity:  quantity,
	}
}

// summarize prices the cart. A stored coupon that no longer validates is
// left out of the totals and reported in CouponProblem.
func (s *CartService) summarize(ctx context.Context, c *cart.Cart, products map[uuid.UUID]*catalog.Product) (*CartResponse, error) {
	resp := &CartResponse{
		ID:             c.ID,
		Items:          make([]CartItemResponse, len(c.Items)),
		CouponCode:     c.CouponCode,
		Currency:       string(s.currency),
		Subtotal:       c.Subtotal(),
		DiscountAmount: decimal.Zero,
		ItemCount:      c.ItemCount(),
		UpdatedAt:      c.UpdatedAt,
	}

	for i, item := range c.Items {
		line := CartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Slug:      item.Slug,
			ImageURL:  item.ImageURL,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
			Available: true,
		}
		if product, ok := products[item.ProductID]; ok {
			if err := product.CheckPurchasable(item.Quantity); err != nil {
				line.Available = false
				line.Problem = err.Error()
				resp.HasUnavailable = true
			}
		}
		resp.Items[i] = line
	}

	if c.CouponCode != "" {
		discount, _, err := s.validator.Validate(ctx, c.CouponCode, resp.Subtotal)
		if err != nil {
			var domainErr *shared.DomainError
			if !errors.As(err, &domainErr) {
				return nil, err
			}
			resp.CouponProblem = &CouponProblem{Code: domainErr.Code, Message: domainErr.Message}
		} else {
			resp.DiscountAmount = discount.Amount
		}
	}

	resp.Total = resp.Subtotal.Sub(resp.DiscountAmount)
	return resp, nil
}
