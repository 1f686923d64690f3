package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// maxResponseSize bounds how much of a remote response is read
const maxResponseSize = 1 << 20

var (
	// ErrNotConfigured is returned when a notifier lacks endpoint or credentials
	ErrNotConfigured = errors.New("notifier is not configured")
	// ErrRemoteRejected is returned for non-2xx responses
	ErrRemoteRejected = errors.New("remote endpoint rejected the request")
)

// httpDoer is the part of *http.Client the notifiers use
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func newHTTPClient(cfg config.NotifyConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// doJSON sends body as JSON and decodes a 2xx response into out (if not nil)
func doJSON(ctx context.Context, client httpDoer, method, url string, headers http.Header, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned HTTP %d", ErrRemoteRejected, method, url, resp.StatusCode)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
