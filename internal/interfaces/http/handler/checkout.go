package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/storefront/backend/internal/application/order"
)

// CheckoutHandler handles order placement and public order lookup
type CheckoutHandler struct {
	BaseHandler
	checkoutService *orderapp.CheckoutService
	orderService    *orderapp.OrderService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *orderapp.CheckoutService, orderService *orderapp.OrderService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, orderService: orderService}
}

// PlaceOrder godoc
// @Summary      Place an order
// @Description  Places an order from a cart or an explicit item list. When online payments are
// @Description  enabled the response carries the Stripe client secret.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body orderapp.CheckoutRequest true "Checkout"
// @Success      201 {object} dto.Response{data=orderapp.CheckoutResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/checkout [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req orderapp.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.checkoutService.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Lookup godoc
// @Summary      Look up an order
// @Description  Customers find their order by number and the email used at checkout
// @Tags         checkout
// @Produce      json
// @Param        number query string true "Order number"
// @Param        email query string true "Customer email"
// @Success      200 {object} dto.Response{data=orderapp.PublicOrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/orders/lookup [get]
func (h *CheckoutHandler) Lookup(c *gin.Context) {
	var req orderapp.LookupRequest
	if !h.BindQuery(c, &req) {
		return
	}

	resp, err := h.orderService.Lookup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
