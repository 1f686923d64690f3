package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Slug           string           `json:"slug" binding:"omitempty,max=120"`
	SKU            string           `json:"sku" binding:"omitempty,max=64"`
	Description    string           `json:"description" binding:"max=5000"`
	Price          decimal.Decimal  `json:"price" binding:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	StockQuantity  int              `json:"stock_quantity" binding:"min=0"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	ImageURL       string           `json:"image_url" binding:"omitempty,url,max=500"`
	Featured       bool             `json:"featured"`
	Active         *bool            `json:"active"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Slug        *string    `json:"slug" binding:"omitempty,min=1,max=120"`
	SKU         *string    `json:"sku" binding:"omitempty,max=64"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	CategoryID  *uuid.UUID `json:"category_id"`
	// ClearCategory removes the category; CategoryID is ignored when set
	ClearCategory bool    `json:"clear_category"`
	ImageURL      *string `json:"image_url" binding:"omitempty,max=500"`
	Featured      *bool   `json:"featured"`
}

// UpdatePriceRequest sets the price and compare-at price together
type UpdatePriceRequest struct {
	Price          decimal.Decimal  `json:"price" binding:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
}

// AdjustStockRequest changes stock by a signed delta
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required,ne=0"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

// ImageUploadResponse carries the presigned PUT URL and the key to attach afterwards
type ImageUploadResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AttachImageRequest attaches an uploaded object to a product
type AttachImageRequest struct {
	Key string `json:"key" binding:"required,max=300"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	SKU            string           `json:"sku,omitempty"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	OnSale         bool             `json:"on_sale"`
	StockQuantity  int              `json:"stock_quantity"`
	InStock        bool             `json:"in_stock"`
	CategoryID     *uuid.UUID       `json:"category_id,omitempty"`
	ImageKey       string           `json:"image_key,omitempty"`
	ImageURL       string           `json:"image_url,omitempty"`
	Active         bool             `json:"active"`
	Featured       bool             `json:"featured"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Version        int              `json:"version"`
}

// ProductListFilter represents filter options for product lists
type ProductListFilter struct {
	Search       string           `form:"search"`
	CategoryID   *uuid.UUID       `form:"category_id"`
	CategorySlug string           `form:"category"`
	Active       *bool            `form:"active"`
	Featured     *bool            `form:"featured"`
	MinPrice     *decimal.Decimal `form:"min_price"`
	MaxPrice     *decimal.Decimal `form:"max_price"`
	Page         int              `form:"page" binding:"omitempty,min=1"`
	PageSize     int              `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string           `form:"order_by" binding:"omitempty,oneof=name price created_at updated_at stock_quantity"`
	OrderDir     string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductResponse converts a domain Product; ImageURL is resolved by the service
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		SKU:            p.SKUValue(),
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		OnSale:         p.IsOnSale(),
		StockQuantity:  p.StockQuantity,
		InStock:        p.StockQuantity > 0,
		CategoryID:     p.CategoryID,
		ImageKey:       p.ImageKey,
		ImageURL:       p.ImageURL,
		Active:         p.Active,
		Featured:       p.Featured,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=120"`
	Description string `json:"description" binding:"max=2000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url,max=500"`
	SortOrder   int    `json:"sort_order"`
}

// UpdateCategoryRequest represents a partial category update
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" binding:"omitempty,min=1,max=120"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=500"`
	SortOrder   *int    `json:"sort_order"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	SortOrder   int       `json:"sort_order"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryListFilter represents filter options for category lists
type CategoryListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToCategoryResponse converts a domain Category
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		SortOrder:   c.SortOrder,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCategoryResponses converts a slice of categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}
