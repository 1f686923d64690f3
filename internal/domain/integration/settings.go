package integration

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// SettingsID is the fixed primary key of the single settings row
var SettingsID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// maskPrefix marks a secret that was masked for display
const maskPrefix = "****"

// Settings holds credentials and endpoints for outbound order notifications.
// There is exactly one settings record per store.
type Settings struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UpdatedAt time.Time `gorm:"not null"`

	WebhookEnabled bool   `gorm:"not null;default:false"`
	WebhookURL     string `gorm:"type:varchar(500)"`
	WebhookSecret  string `gorm:"type:varchar(200)"`
	// WebhookEvents restricts delivered event types; empty means all order events.
	WebhookEvents string `gorm:"type:varchar(500)"`

	ChatwootEnabled   bool   `gorm:"not null;default:false"`
	ChatwootBaseURL   string `gorm:"type:varchar(500)"`
	ChatwootAccountID int    `gorm:"not null;default:0"`
	ChatwootInboxID   int    `gorm:"not null;default:0"`
	ChatwootAPIToken  string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (Settings) TableName() string {
	return "integration_settings"
}

// DefaultSettings returns the disabled settings used before the merchant
// configures anything.
func DefaultSettings() *Settings {
	return &Settings{ID: SettingsID, UpdatedAt: time.Now()}
}

// WebhookConfig is the outbound webhook part of the settings
type WebhookConfig struct {
	Enabled bool
	URL     string
	Secret  string
	Events  []string
}

// ChatwootConfig is the Chatwoot part of the settings
type ChatwootConfig struct {
	Enabled   bool
	BaseURL   string
	AccountID int
	InboxID   int
	APIToken  string
}

// Webhook returns the webhook configuration
func (s *Settings) Webhook() WebhookConfig {
	return WebhookConfig{
		Enabled: s.WebhookEnabled,
		URL:     s.WebhookURL,
		Secret:  s.WebhookSecret,
		Events:  splitEvents(s.WebhookEvents),
	}
}

// Chatwoot returns the Chatwoot configuration
func (s *Settings) Chatwoot() ChatwootConfig {
	return ChatwootConfig{
		Enabled:   s.ChatwootEnabled,
		BaseURL:   s.ChatwootBaseURL,
		AccountID: s.ChatwootAccountID,
		InboxID:   s.ChatwootInboxID,
		APIToken:  s.ChatwootAPIToken,
	}
}

// UpdateWebhook replaces the webhook configuration. A masked or empty
// secret keeps the stored one.
func (s *Settings) UpdateWebhook(cfg WebhookConfig) error {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL != "" || cfg.Enabled {
		if err := validateHTTPURL(cfg.URL, "webhook URL"); err != nil {
			return err
		}
	}

	s.WebhookEnabled = cfg.Enabled
	s.WebhookURL = cfg.URL
	if cfg.Secret != "" && !IsMasked(cfg.Secret) {
		s.WebhookSecret = cfg.Secret
	}
	s.WebhookEvents = strings.Join(cfg.Events, ",")
	s.UpdatedAt = time.Now()
	return nil
}

// UpdateChatwoot replaces the Chatwoot configuration. A masked or empty
// token keeps the stored one.
func (s *Settings) UpdateChatwoot(cfg ChatwootConfig) error {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL != "" || cfg.Enabled {
		if err := validateHTTPURL(cfg.BaseURL, "Chatwoot base URL"); err != nil {
			return err
		}
	}
	if cfg.Enabled && (cfg.AccountID <= 0 || cfg.InboxID <= 0) {
		return shared.NewDomainError("INVALID_CHATWOOT_CONFIG", "Chatwoot account ID and inbox ID are required")
	}

	token := s.ChatwootAPIToken
	if cfg.APIToken != "" && !IsMasked(cfg.APIToken) {
		token = cfg.APIToken
	}
	if cfg.Enabled && token == "" {
		return shared.NewDomainError("INVALID_CHATWOOT_CONFIG", "Chatwoot API token is required")
	}

	s.ChatwootEnabled = cfg.Enabled
	s.ChatwootBaseURL = cfg.BaseURL
	s.ChatwootAccountID = cfg.AccountID
	s.ChatwootInboxID = cfg.InboxID
	s.ChatwootAPIToken = token
	s.UpdatedAt = time.Now()
	return nil
}

// WantsWebhook reports whether eventType should be delivered to the webhook
func (s *Settings) WantsWebhook(eventType string) bool {
	if !s.WebhookEnabled || s.WebhookURL == "" {
		return false
	}
	events := splitEvents(s.WebhookEvents)
	if len(events) == 0 {
		return true
	}
	for _, e := range events {
		if e == eventType {
			return true
		}
	}
	return false
}

// WantsChatwoot reports whether Chatwoot notifications are configured
func (s *Settings) WantsChatwoot() bool {
	return s.ChatwootEnabled && s.ChatwootBaseURL != "" && s.ChatwootAPIToken != ""
}

// Mask hides all but the last four characters of a secret
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return maskPrefix
	}
	return maskPrefix + secret[len(secret)-4:]
}

// IsMasked reports whether s was produced by Mask
func IsMasked(s string) bool {
	return strings.HasPrefix(s, maskPrefix)
}

func validateHTTPURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return shared.NewDomainError("INVALID_URL", "The "+field+" must be an absolute http(s) URL")
	}
	return nil
}

func splitEvents(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	events := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			events = append(events, p)
		}
	}
	return events
}
