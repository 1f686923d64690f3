package integration

import "context"

// SettingsRepository loads and stores the single settings record
type SettingsRepository interface {
	// Get returns the stored settings, or DefaultSettings when none exist
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}
