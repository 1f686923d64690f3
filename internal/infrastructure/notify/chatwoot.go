package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/infrastructure/config"
)

type chatwootContactInbox struct {
	SourceID string `json:"source_id"`
	Inbox    struct {
		ID int `json:"id"`
	} `json:"inbox"`
}

type chatwootContact struct {
	ID             int                    `json:"id"`
	Email          string                 `json:"email"`
	ContactInboxes []chatwootContactInbox `json:"contact_inboxes"`
}

type chatwootSearchResponse struct {
	Payload []chatwootContact `json:"payload"`
}

type chatwootCreateContactResponse struct {
	Payload struct {
		Contact      chatwootContact      `json:"contact"`
		ContactInbox chatwootContactInbox `json:"contact_inbox"`
	} `json:"payload"`
}

type chatwootConversation struct {
	ID int `json:"id"`
}

// ChatwootClient posts order updates into a Chatwoot inbox as outgoing
// messages on a conversation with the customer. Each call is tried once
// and the first failing step aborts the delivery.
type ChatwootClient struct {
	client    httpDoer
	userAgent string
	currency  string
}

// NewChatwootClient creates a client; currency is the store currency used
// to format totals.
func NewChatwootClient(cfg config.NotifyConfig, currency string) *ChatwootClient {
	return &ChatwootClient{client: newHTTPClient(cfg), userAgent: cfg.UserAgent, currency: currency}
}

// Send finds or creates the customer's contact, opens a conversation in
// the configured inbox and posts a message describing the event.
func (c *ChatwootClient) Send(ctx context.Context, cfg integration.ChatwootConfig, n integration.Notification) error {
	if cfg.BaseURL == "" || cfg.APIToken == "" || cfg.AccountID <= 0 || cfg.InboxID <= 0 {
		return fmt.Errorf("chatwoot: %w", ErrNotConfigured)
	}
	api := chatwootAPI{client: c, cfg: cfg}

	contactID, sourceID, err := api.resolveContact(ctx, n)
	if err != nil {
		return fmt.Errorf("chatwoot: %w", err)
	}

	var conv chatwootConversation
	err = api.do(ctx, http.MethodPost, "/conversations", map[string]any{
		"source_id":  sourceID,
		"inbox_id":   cfg.InboxID,
		"contact_id": contactID,
		"additional_attributes": map[string]any{
			"order_number": n.Order.OrderNumber,
		},
	}, &conv)
	if err != nil {
		return fmt.Errorf("chatwoot: failed to open conversation: %w", err)
	}
	if conv.ID == 0 {
		return fmt.Errorf("chatwoot: conversation response carried no id")
	}

	content := FormatOrderMessage(n, c.currencyFor(n))
	err = api.do(ctx, http.MethodPost, fmt.Sprintf("/conversations/%d/messages", conv.ID), map[string]any{
		"content":      content,
		"message_type": "outgoing",
		"private":      false,
	}, nil)
	if err != nil {
		return fmt.Errorf("chatwoot: failed to post message: %w", err)
	}
	return nil
}

func (c *ChatwootClient) currencyFor(n integration.Notification) string {
	if n.Order.Currency != "" {
		return n.Order.Currency
	}
	return c.currency
}

type chatwootAPI struct {
	client *ChatwootClient
	cfg    integration.ChatwootConfig
}

func (a chatwootAPI) do(ctx context.Context, method, path string, body, out any) error {
	endpoint := fmt.Sprintf("%s/api/v1/accounts/%d%s", strings.TrimRight(a.cfg.BaseURL, "/"), a.cfg.AccountID, path)
	headers := http.Header{}
	headers.Set("api_access_token", a.cfg.APIToken)
	if a.client.userAgent != "" {
		headers.Set("User-Agent", a.client.userAgent)
	}
	return doJSON(ctx, a.client.client, method, endpoint, headers, body, out)
}

// resolveContact returns the contact id and its source id in the inbox,
// creating the contact or its inbox link when missing.
func (a chatwootAPI) resolveContact(ctx context.Context, n integration.Notification) (int, string, error) {
	email := n.Order.CustomerEmail

	var search chatwootSearchResponse
	if err := a.do(ctx, http.MethodGet, "/contacts/search?q="+url.QueryEscape(email), nil, &search); err != nil {
		return 0, "", fmt.Errorf("failed to search contacts: %w", err)
	}
	for _, contact := range search.Payload {
		if !strings.EqualFold(contact.Email, email) {
			continue
		}
		if sourceID := a.sourceIDFor(contact.ContactInboxes); sourceID != "" {
			return contact.ID, sourceID, nil
		}
		var link chatwootContactInbox
		err := a.do(ctx, http.MethodPost, fmt.Sprintf("/contacts/%d/contact_inboxes", contact.ID), map[string]any{
			"inbox_id": a.cfg.InboxID,
		}, &link)
		if err != nil {
			return 0, "", fmt.Errorf("failed to link contact to inbox: %w", err)
		}
		return contact.ID, link.SourceID, nil
	}

	body := map[string]any{
		"inbox_id": a.cfg.InboxID,
		"name":     n.Order.CustomerName,
		"email":    email,
	}
	if n.Order.CustomerPhone != "" {
		body["phone_number"] = n.Order.CustomerPhone
	}
	var created chatwootCreateContactResponse
	if err := a.do(ctx, http.MethodPost, "/contacts", body, &created); err != nil {
		return 0, "", fmt.Errorf("failed to create contact: %w", err)
	}
	sourceID := created.Payload.ContactInbox.SourceID
	if sourceID == "" {
		sourceID = a.sourceIDFor(created.Payload.Contact.ContactInboxes)
	}
	if created.Payload.Contact.ID == 0 || sourceID == "" {
		return 0, "", fmt.Errorf("contact response carried no id or source id")
	}
	return created.Payload.Contact.ID, sourceID, nil
}

func (a chatwootAPI) sourceIDFor(inboxes []chatwootContactInbox) string {
	for _, ci := range inboxes {
		if ci.Inbox.ID == a.cfg.InboxID && ci.SourceID != "" {
			return ci.SourceID
		}
	}
	return ""
}

var _ integration.ChatwootSender = (*ChatwootClient)(nil)
