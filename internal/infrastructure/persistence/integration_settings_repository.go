package persistence

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/integration"
	"gorm.io/gorm"
)

// GormIntegrationSettingsRepository stores the single integration settings row
type GormIntegrationSettingsRepository struct {
	db *gorm.DB
}

func NewGormIntegrationSettingsRepository(db *gorm.DB) *GormIntegrationSettingsRepository {
	return &GormIntegrationSettingsRepository{db: db}
}

func (r *GormIntegrationSettingsRepository) Get(ctx context.Context) (*integration.Settings, error) {
	var settings integration.Settings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", integration.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return integration.DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *GormIntegrationSettingsRepository) Save(ctx context.Context, settings *integration.Settings) error {
	settings.ID = integration.SettingsID
	return upsertOmitting(r.db.WithContext(ctx), settings, settings.ID)
}

var _ integration.SettingsRepository = (*GormIntegrationSettingsRepository)(nil)
