package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// imageExtensions maps accepted upload content types to key extensions
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	storage      ImageStorage
	images       *ImageResolver
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewProductService creates a new ProductService. storage and events may be nil.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storage ImageStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
		images:       NewImageResolver(storage, logger),
		events:       events,
		logger:       logger,
	}
}

// Images returns the resolver used for product responses
func (s *ProductService) Images() *ImageResolver {
	return s.images
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Slug, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(ctx, product.Slug); err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := product.Update(product.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.SKU != "" {
		if err := product.SetSKU(req.SKU); err != nil {
			return nil, err
		}
		if err := s.ensureSKUAvailable(ctx, product.SKUValue()); err != nil {
			return nil, err
		}
	}
	if req.CompareAtPrice != nil {
		if err := product.SetPricing(req.Price, req.CompareAtPrice); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}
	if req.ImageURL != "" {
		if err := product.SetImage("", req.ImageURL); err != nil {
			return nil, err
		}
	}
	if req.Featured {
		product.SetFeatured(true)
	}
	if req.Active != nil && !*req.Active {
		if err := product.Deactivate(); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if req.StockQuantity > 0 {
		qty, err := s.productRepo.AdjustStock(ctx, product.ID, req.StockQuantity)
		if err != nil {
			return nil, err
		}
		product.StockQuantity = qty
	}
	s.publish(ctx, product.GetDomainEvents()...)
	product.ClearDomainEvents()

	resp := s.images.Response(ctx, product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.images.Response(ctx, product)
	return &resp, nil
}

// GetBySlug retrieves a product by slug. Inactive products are hidden
// from the storefront.
func (s *ProductService) GetBySlug(ctx context.Context, slug string, publicOnly bool) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	if publicOnly && !product.Active {
		return nil, shared.ErrNotFound
	}
	resp := s.images.Response(ctx, product)
	return &resp, nil
}

// List retrieves products for the dashboard
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	return s.list(ctx, filter)
}

// ListPublic retrieves active products for the storefront
func (s *ProductService) ListPublic(ctx context.Context, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	active := true
	filter.Active = &active
	return s.list(ctx, filter)
}

func (s *ProductService) list(ctx context.Context, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = strings.TrimSpace(filter.Search)

	if filter.CategoryID == nil && filter.CategorySlug != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, filter.CategorySlug)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				page := shared.NewPaginated([]ProductResponse{}, 0, f.Page, f.PageSize)
				return &page, nil
			}
			return nil, err
		}
		filter.CategoryID = &category.ID
	}
	if filter.CategoryID != nil {
		f.Filters["category_id"] = *filter.CategoryID
	}
	if filter.Active != nil {
		f.Filters["active"] = *filter.Active
	}
	if filter.Featured != nil {
		f.Filters["featured"] = *filter.Featured
	}
	if filter.MinPrice != nil {
		f.Filters["min_price"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		f.Filters["max_price"] = *filter.MaxPrice
	}

	products, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = s.images.Response(ctx, &products[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update updates a product's descriptive fields
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name := product.Name
		if req.Name != nil {
			name = *req.Name
		}
		description := product.Description
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(name, description); err != nil {
			return nil, err
		}
	}
	if req.Slug != nil && *req.Slug != product.Slug {
		if err := product.SetSlug(*req.Slug); err != nil {
			return nil, err
		}
		if err := s.ensureSlugAvailable(ctx, product.Slug); err != nil {
			return nil, err
		}
	}
	if req.SKU != nil {
		previous := product.SKUValue()
		if err := product.SetSKU(*req.SKU); err != nil {
			return nil, err
		}
		if sku := product.SKUValue(); sku != "" && sku != previous {
			if err := s.ensureSKUAvailable(ctx, sku); err != nil {
				return nil, err
			}
		}
	}
	switch {
	case req.ClearCategory:
		product.SetCategory(nil)
	case req.CategoryID != nil:
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}
	if req.ImageURL != nil {
		if err := product.SetImage("", strings.TrimSpace(*req.ImageURL)); err != nil {
			return nil, err
		}
	}
	if req.Featured != nil {
		product.SetFeatured(*req.Featured)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := s.images.Response(ctx, product)
	return &resp, nil
}

// UpdatePrice sets the price and compare-at price
func (s *ProductService) UpdatePrice(ctx context.Context, id uuid.UUID, req UpdatePriceRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.SetPricing(req.Price, req.CompareAtPrice); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := s.images.Response(ctx, product)
	return &resp, nil
}

// AdjustStock adds delta to the stock level. The change is applied
// atomically by the repository so concurrent checkouts are not lost.
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	if req.Delta == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Stock adjustment cannot be zero")
	}
	qty, err := s.productRepo.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.StockQuantity = qty
	s.publish(ctx, catalog.NewProductStockChangedEvent(product, qty-req.Delta))

	resp := s.images.Response(ctx, product)
	return &resp, nil
}

// Activate publishes a product on the storefront
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.setActive(ctx, id, true)
}

// Deactivate hides a product from the storefront
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.setActive(ctx, id, false)
}

func (s *ProductService) setActive(ctx context.Context, id uuid.UUID, active bool) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		err = product.Activate()
	} else {
		err = product.Deactivate()
	}
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := s.images.Response(ctx, product)
	return &resp, nil
}

// Delete deletes a product and its uploaded image
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	if product.ImageKey != "" && s.storage != nil {
		if err := s.storage.DeleteObject(ctx, product.ImageKey); err != nil {
			s.logger.Warn("failed to delete product image",
				zap.String("product_id", id.String()),
				zap.String("image_key", product.ImageKey),
				zap.Error(err),
			)
		}
	}
	return nil
}

// CreateImageUploadURL returns a presigned URL the dashboard uploads the
// product image to. The returned key is attached with AttachImage.
func (s *ProductService) CreateImageUploadURL(ctx context.Context, id uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	ext, ok := imageExtensions[req.ContentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Unsupported image content type")
	}
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Image storage is not configured")
	}
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	key := path.Join(imageKeyPrefix(id), uuid.NewString()+ext)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType)
	if err != nil {
		return nil, err
	}
	return &ImageUploadResponse{Key: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

// AttachImage points the product at an uploaded object
func (s *ProductService) AttachImage(ctx context.Context, id uuid.UUID, req AttachImageRequest) (*ProductResponse, error) {
	if !strings.HasPrefix(req.Key, imageKeyPrefix(id)+"/") {
		return nil, shared.NewDomainError("INVALID_IMAGE_KEY", "Image key does not belong to this product")
	}
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Image storage is not configured")
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.storage.ObjectExists(ctx, req.Key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("IMAGE_NOT_UPLOADED", "Image has not been uploaded yet")
	}

	previous := product.ImageKey
	if err := product.SetImage(req.Key, ""); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if previous != "" && previous != req.Key {
		if err := s.storage.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("failed to delete replaced product image",
				zap.String("product_id", id.String()),
				zap.String("image_key", previous),
				zap.Error(err),
			)
		}
	}

	resp := s.images.Response(ctx, product)
	return &resp, nil
}

func imageKeyPrefix(id uuid.UUID) string {
	return fmt.Sprintf("products/%s", id)
}

func (s *ProductService) ensureSlugAvailable(ctx context.Context, slug string) error {
	exists, err := s.productRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
	}
	return nil
}

func (s *ProductService) ensureSKUAvailable(ctx context.Context, sku string) error {
	exists, err := s.productRepo.ExistsBySKU(ctx, sku)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}
	return nil
}

func (s *ProductService) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

func (s *ProductService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events", zap.Error(err))
	}
}
