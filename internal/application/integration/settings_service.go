package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// EventTypeTest is the event type of test deliveries
const EventTypeTest = "IntegrationTest"

// SettingsService manages the integration settings and test deliveries
type SettingsService struct {
	repo     integration.SettingsRepository
	webhook  integration.WebhookSender
	chatwoot integration.ChatwootSender
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(
	repo integration.SettingsRepository,
	webhook integration.WebhookSender,
	chatwoot integration.ChatwootSender,
	timeout time.Duration,
	logger *zap.Logger,
) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &SettingsService{
		repo:     repo,
		webhook:  webhook,
		chatwoot: chatwoot,
		timeout:  timeout,
		logger:   logger,
	}
}

// Get returns the settings with secrets masked
func (s *SettingsService) Get(ctx context.Context) (*SettingsResponse, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	resp := ToSettingsResponse(settings)
	return &resp, nil
}

// Update replaces the sections present in req. Secrets that come back
// masked or empty keep their stored value.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*SettingsResponse, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.Webhook != nil {
		if err := settings.UpdateWebhook(integration.WebhookConfig{
			Enabled: req.Webhook.Enabled,
			URL:     req.Webhook.URL,
			Secret:  req.Webhook.Secret,
			Events:  req.Webhook.Events,
		}); err != nil {
			return nil, err
		}
	}
	if req.Chatwoot != nil {
		if err := settings.UpdateChatwoot(integration.ChatwootConfig{
			Enabled:   req.Chatwoot.Enabled,
			BaseURL:   req.Chatwoot.BaseURL,
			AccountID: req.Chatwoot.AccountID,
			InboxID:   req.Chatwoot.InboxID,
			APIToken:  req.Chatwoot.APIToken,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	s.logger.Info("Integration settings updated",
		zap.Bool("webhook_enabled", settings.WebhookEnabled),
		zap.Bool("chatwoot_enabled", settings.ChatwootEnabled),
	)

	resp := ToSettingsResponse(settings)
	return &resp, nil
}

// TestWebhook sends a sample notification to the stored webhook URL, even
// when the webhook is not enabled yet
func (s *SettingsService) TestWebhook(ctx context.Context) (*TestResult, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	cfg := settings.Webhook()
	if cfg.URL == "" {
		return &TestResult{Success: false, Message: "Webhook URL is not configured"}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.result(integration.NotifierWebhook, s.webhook.Send(ctx, cfg, sampleNotification())), nil
}

// TestChatwoot posts a sample order message through the stored Chatwoot
// credentials
func (s *SettingsService) TestChatwoot(ctx context.Context) (*TestResult, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	cfg := settings.Chatwoot()
	if cfg.BaseURL == "" || cfg.APIToken == "" || cfg.AccountID <= 0 || cfg.InboxID <= 0 {
		return &TestResult{Success: false, Message: "Chatwoot is not configured"}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.result(integration.NotifierChatwoot, s.chatwoot.Send(ctx, cfg, sampleNotification())), nil
}

func (s *SettingsService) result(notifier string, err error) *TestResult {
	if err != nil {
		s.logger.Warn("Test notification failed",
			logger.Notifier(notifier),
			logger.EventType(EventTypeTest),
			zap.Error(err),
		)
		return &TestResult{Success: false, Message: err.Error()}
	}
	return &TestResult{Success: true, Message: "Test notification delivered"}
}

func sampleNotification() integration.Notification {
	return integration.Notification{
		EventID:    uuid.NewString(),
		EventType:  EventTypeTest,
		OccurredAt: time.Now(),
		Order: order.Snapshot{
			OrderID:        uuid.Nil,
			OrderNumber:    "TEST-00000000-000000",
			Status:         order.StatusPending,
			PaymentStatus:  order.PaymentStatusUnpaid,
			CustomerName:   "Test Customer",
			CustomerEmail:  "test@example.com",
			Subtotal:       decimal.NewFromInt(10),
			DiscountAmount: decimal.Zero,
			ShippingAmount: decimal.Zero,
			Total:          decimal.NewFromInt(10),
			Items:          []order.SnapshotItem{},
		},
	}
}
