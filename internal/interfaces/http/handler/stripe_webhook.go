package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	orderapp "github.com/storefront/backend/internal/application/order"
)

// MaxWebhookPayloadBytes caps the Stripe event body
const MaxWebhookPayloadBytes = 64 << 10

// StripeSignatureHeader carries the Stripe webhook signature
const StripeSignatureHeader = "Stripe-Signature"

// StripeWebhookHandler receives Stripe payment events
type StripeWebhookHandler struct {
	BaseHandler
	webhookService *orderapp.StripeWebhookService
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(webhookService *orderapp.StripeWebhookService) *StripeWebhookHandler {
	return &StripeWebhookHandler{webhookService: webhookService}
}

// Handle godoc
// @Summary      Stripe webhook
// @Description  Verifies the Stripe-Signature header and applies payment_intent events.
// @Description  A 5xx answer makes Stripe retry the delivery.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe signature"
// @Success      200 {object} dto.Response{data=orderapp.WebhookResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /webhooks/stripe [post]
func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	signature := c.GetHeader(StripeSignatureHeader)
	if signature == "" {
		h.BadRequest(c, "Missing "+StripeSignatureHeader+" header")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookPayloadBytes))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
