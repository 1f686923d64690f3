package storage

import (
	"context"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ErrStorageDisabled is returned for uploads when no object storage is configured
var ErrStorageDisabled = shared.NewDomainError("STORAGE_DISABLED", "Image storage is not configured")

// DisabledImageStorage is used when object storage is off. Uploads are
// refused; products keep whatever image URL the merchant typed in.
type DisabledImageStorage struct{}

var _ catalogapp.ImageStorage = DisabledImageStorage{}

func (DisabledImageStorage) GenerateUploadURL(ctx context.Context, key, contentType string) (string, time.Time, error) {
	return "", time.Time{}, ErrStorageDisabled
}

func (DisabledImageStorage) ImageURL(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (DisabledImageStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	return false, ErrStorageDisabled
}

func (DisabledImageStorage) DeleteObject(ctx context.Context, key string) error {
	return nil
}
