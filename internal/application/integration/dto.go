package integration

import (
	"time"

	"github.com/storefront/backend/internal/domain/integration"
)

// WebhookSettings is the webhook part of the settings form
type WebhookSettings struct {
	Enabled bool     `json:"enabled"`
	URL     string   `json:"url" binding:"omitempty,max=500"`
	Secret  string   `json:"secret" binding:"max=200"`
	Events  []string `json:"events" binding:"omitempty,dive,oneof=OrderCreated OrderStatusChanged OrderPaid"`
}

// ChatwootSettings is the Chatwoot part of the settings form
type ChatwootSettings struct {
	Enabled   bool   `json:"enabled"`
	BaseURL   string `json:"base_url" binding:"omitempty,max=500"`
	AccountID int    `json:"account_id" binding:"min=0"`
	InboxID   int    `json:"inbox_id" binding:"min=0"`
	APIToken  string `json:"api_token" binding:"max=200"`
}

// SettingsResponse shows the settings with secrets masked
type SettingsResponse struct {
	Webhook   WebhookSettings  `json:"webhook"`
	Chatwoot  ChatwootSettings `json:"chatwoot"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// UpdateSettingsRequest replaces the sections that are present
type UpdateSettingsRequest struct {
	Webhook  *WebhookSettings  `json:"webhook"`
	Chatwoot *ChatwootSettings `json:"chatwoot"`
}

// TestResult reports a synchronous test delivery
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ToSettingsResponse converts settings and masks the secrets
func ToSettingsResponse(s *integration.Settings) SettingsResponse {
	webhook := s.Webhook()
	chatwoot := s.Chatwoot()
	events := webhook.Events
	if events == nil {
		events = []string{}
	}
	return SettingsResponse{
		Webhook: WebhookSettings{
			Enabled: webhook.Enabled,
			URL:     webhook.URL,
			Secret:  integration.Mask(webhook.Secret),
			Events:  events,
		},
		Chatwoot: ChatwootSettings{
			Enabled:   chatwoot.Enabled,
			BaseURL:   chatwoot.BaseURL,
			AccountID: chatwoot.AccountID,
			InboxID:   chatwoot.InboxID,
			APIToken:  integration.Mask(chatwoot.APIToken),
		},
		UpdatedAt: s.UpdatedAt,
	}
}
