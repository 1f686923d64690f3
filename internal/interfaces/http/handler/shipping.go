package handler

import (
	"github.com/gin-gonic/gin"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
)

// ShippingHandler handles shipping rate endpoints
type ShippingHandler struct {
	BaseHandler
	rateService *shippingapp.RateService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(rateService *shippingapp.RateService) *ShippingHandler {
	return &ShippingHandler{rateService: rateService}
}

// ListActive godoc
// @Summary      Available shipping rates
// @Tags         storefront
// @Produce      json
// @Success      200 {object} dto.Response{data=[]shippingapp.RateResponse}
// @Router       /store/shipping-rates [get]
func (h *ShippingHandler) ListActive(c *gin.Context) {
	rates, err := h.rateService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rates)
}

// Quote godoc
// @Summary      Quote a shipping rate
// @Description  Returns the shipping cost for a subtotal, zero above the free shipping threshold
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Param        request body shippingapp.QuoteRequest true "Order subtotal"
// @Success      200 {object} dto.Response{data=shippingapp.QuoteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/shipping-rates/{id}/quote [post]
func (h *ShippingHandler) Quote(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req shippingapp.QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quote, err := h.rateService.Quote(c.Request.Context(), id, req.Subtotal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Create godoc
// @Summary      Create a shipping rate
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request body shippingapp.CreateRateRequest true "Rate"
// @Success      201 {object} dto.Response{data=shippingapp.RateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shipping-rates [post]
func (h *ShippingHandler) Create(c *gin.Context) {
	var req shippingapp.CreateRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rate, err := h.rateService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rate)
}

// GetByID godoc
// @Summary      Get a shipping rate
// @Tags         shipping
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.RateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shipping-rates/{id} [get]
func (h *ShippingHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	rate, err := h.rateService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// List godoc
// @Summary      List shipping rates
// @Tags         shipping
// @Produce      json
// @Param        active query bool false "Active flag"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]shippingapp.RateResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/shipping-rates [get]
func (h *ShippingHandler) List(c *gin.Context) {
	var filter shippingapp.RateListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	page, err := h.rateService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Update godoc
// @Summary      Update a shipping rate
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Param        request body shippingapp.UpdateRateRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=shippingapp.RateResponse}
// @Security     BearerAuth
// @Router       /admin/shipping-rates/{id} [put]
func (h *ShippingHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req shippingapp.UpdateRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rate, err := h.rateService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Activate godoc
// @Summary      Activate a shipping rate
// @Tags         shipping
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.RateResponse}
// @Security     BearerAuth
// @Router       /admin/shipping-rates/{id}/activate [post]
func (h *ShippingHandler) Activate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	rate, err := h.rateService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Deactivate godoc
// @Summary      Deactivate a shipping rate
// @Tags         shipping
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.RateResponse}
// @Security     BearerAuth
// @Router       /admin/shipping-rates/{id}/deactivate [post]
func (h *ShippingHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	rate, err := h.rateService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Delete godoc
// @Summary      Delete a shipping rate
// @Tags         shipping
// @Param        id path string true "Rate ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /admin/shipping-rates/{id} [delete]
func (h *ShippingHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.rateService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
