package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// Outbound webhook headers
const (
	HeaderEvent     = "X-Storefront-Event"
	HeaderDelivery  = "X-Storefront-Delivery"
	HeaderSignature = "X-Storefront-Signature"
)

// WebhookPayload is the JSON body POSTed to the merchant's endpoint
type WebhookPayload struct {
	ID             string         `json:"id"`
	Event          string         `json:"event"`
	OccurredAt     time.Time      `json:"occurred_at"`
	PreviousStatus order.Status   `json:"previous_status,omitempty"`
	Data           order.Snapshot `json:"data"`
}

// WebhookSender POSTs signed order events to a configured URL. It makes
// a single attempt; any 2xx response counts as delivered.
type WebhookSender struct {
	client    httpDoer
	userAgent string
}

// NewWebhookSender creates a sender with the configured timeout and user agent
func NewWebhookSender(cfg config.NotifyConfig) *WebhookSender {
	return &WebhookSender{client: newHTTPClient(cfg), userAgent: cfg.UserAgent}
}

// Send delivers n to cfg.URL
func (s *WebhookSender) Send(ctx context.Context, cfg integration.WebhookConfig, n integration.Notification) error {
	if cfg.URL == "" {
		return fmt.Errorf("webhook: %w", ErrNotConfigured)
	}

	body, err := json.Marshal(WebhookPayload{
		ID:             n.EventID,
		Event:          n.EventType,
		OccurredAt:     n.OccurredAt.UTC(),
		PreviousStatus: n.OldStatus,
		Data:           n.Order,
	})
	if err != nil {
		return fmt.Errorf("webhook: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set(HeaderEvent, n.EventType)
	req.Header.Set(HeaderDelivery, n.EventID)
	if cfg.Secret != "" {
		req.Header.Set(HeaderSignature, Sign(cfg.Secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: %w: HTTP %d", ErrRemoteRejected, resp.StatusCode)
	}
	return nil
}

// Sign returns the signature header value "sha256=<hex HMAC-SHA256(secret, body)>"
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a signature header produced by Sign
func VerifySignature(secret string, body []byte, header string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(header))
}

var _ integration.WebhookSender = (*WebhookSender)(nil)
