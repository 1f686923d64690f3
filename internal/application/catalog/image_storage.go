package catalog

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// ImageStorage stores product images in an object store
type ImageStorage interface {
	// GenerateUploadURL returns a presigned PUT URL for key and its expiry
	GenerateUploadURL(ctx context.Context, key, contentType string) (string, time.Time, error)
	// ImageURL returns a URL the storefront can load key from
	ImageURL(ctx context.Context, key string) (string, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
	DeleteObject(ctx context.Context, key string) error
}

// ImageResolver turns a product's stored image reference into a URL
type ImageResolver struct {
	storage ImageStorage
	logger  *zap.Logger
}

// NewImageResolver creates an ImageResolver. A nil storage resolves only
// manually set URLs.
func NewImageResolver(storage ImageStorage, logger *zap.Logger) *ImageResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageResolver{storage: storage, logger: logger}
}

// Resolve returns the URL of the product image. Objects uploaded to the
// store take precedence over a manually entered URL.
func (r *ImageResolver) Resolve(ctx context.Context, p *catalog.Product) string {
	if r == nil || p.ImageKey == "" || r.storage == nil {
		return p.ImageURL
	}
	url, err := r.storage.ImageURL(ctx, p.ImageKey)
	if err != nil || url == "" {
		if err != nil {
			r.logger.Warn("failed to resolve product image",
				zap.String("product_id", p.ID.String()),
				zap.String("image_key", p.ImageKey),
				zap.Error(err),
			)
		}
		return p.ImageURL
	}
	return url
}

// Response converts p and resolves its image
func (r *ImageResolver) Response(ctx context.Context, p *catalog.Product) ProductResponse {
	resp := ToProductResponse(p)
	resp.ImageURL = r.Resolve(ctx, p)
	return resp
}
