package handler

import (
	"github.com/gin-gonic/gin"
	integrationapp "github.com/storefront/backend/internal/application/integration"
)

// IntegrationHandler manages outbound notification settings
type IntegrationHandler struct {
	BaseHandler
	settingsService *integrationapp.SettingsService
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(settingsService *integrationapp.SettingsService) *IntegrationHandler {
	return &IntegrationHandler{settingsService: settingsService}
}

// Get godoc
// @Summary      Integration settings
// @Description  Secrets are returned masked
// @Tags         integrations
// @Produce      json
// @Success      200 {object} dto.Response{data=integrationapp.SettingsResponse}
// @Security     BearerAuth
// @Router       /admin/integrations [get]
func (h *IntegrationHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// Update godoc
// @Summary      Update integration settings
// @Description  Masked secrets sent back unchanged keep their stored value
// @Tags         integrations
// @Accept       json
// @Produce      json
// @Param        request body integrationapp.UpdateSettingsRequest true "Settings"
// @Success      200 {object} dto.Response{data=integrationapp.SettingsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/integrations [put]
func (h *IntegrationHandler) Update(c *gin.Context) {
	var req integrationapp.UpdateSettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// TestWebhook godoc
// @Summary      Send a test webhook
// @Tags         integrations
// @Produce      json
// @Success      200 {object} dto.Response{data=integrationapp.TestResult}
// @Security     BearerAuth
// @Router       /admin/integrations/webhook/test [post]
func (h *IntegrationHandler) TestWebhook(c *gin.Context) {
	result, err := h.settingsService.TestWebhook(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// TestChatwoot godoc
// @Summary      Send a test Chatwoot message
// @Tags         integrations
// @Produce      json
// @Success      200 {object} dto.Response{data=integrationapp.TestResult}
// @Security     BearerAuth
// @Router       /admin/integrations/chatwoot/test [post]
func (h *IntegrationHandler) TestChatwoot(c *gin.Context) {
	result, err := h.settingsService.TestChatwoot(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
