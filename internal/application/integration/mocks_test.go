package integration

import (
	"context"
	"sync"

	"github.com/storefront/backend/internal/domain/integration"
)

type memorySettingsRepository struct {
	mu       sync.Mutex
	settings *integration.Settings
	getErr   error
	saves    int
}

func newMemorySettingsRepository(s *integration.Settings) *memorySettingsRepository {
	if s == nil {
		s = integration.DefaultSettings()
	}
	return &memorySettingsRepository{settings: s}
}

func (r *memorySettingsRepository) Get(ctx context.Context) (*integration.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	copied := *r.settings
	return &copied, nil
}

func (r *memorySettingsRepository) Save(ctx context.Context, s *integration.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.settings = &copied
	r.saves++
	return nil
}

func (r *memorySettingsRepository) stored() integration.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.settings
}

// fakeWebhookSender records deliveries; block, when set, holds every send
// until closed or the context ends
type fakeWebhookSender struct {
	mu    sync.Mutex
	sent  []integration.Notification
	cfgs  []integration.WebhookConfig
	err   error
	block chan struct{}
}

func (s *fakeWebhookSender) Send(ctx context.Context, cfg integration.WebhookConfig, n integration.Notification) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	s.cfgs = append(s.cfgs, cfg)
	return s.err
}

func (s *fakeWebhookSender) deliveries() []integration.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]integration.Notification(nil), s.sent...)
}

type fakeChatwootSender struct {
	mu    sync.Mutex
	sent  []integration.Notification
	err   error
	panic string
}

func (s *fakeChatwootSender) Send(ctx context.Context, cfg integration.ChatwootConfig, n integration.Notification) error {
	if s.panic != "" {
		panic(s.panic)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

func (s *fakeChatwootSender) deliveries() []integration.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]integration.Notification(nil), s.sent...)
}
