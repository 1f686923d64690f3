package handler

import (
	"github.com/gin-gonic/gin"
	cartapp "github.com/storefront/backend/internal/application/cart"
)

// CartHandler handles anonymous storefront carts
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Create godoc
// @Summary      Start a cart
// @Tags         cart
// @Produce      json
// @Success      201 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /store/carts [post]
func (h *CartHandler) Create(c *gin.Context) {
	cart, err := h.cartService.Create(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cart)
}

// Get godoc
// @Summary      Get a cart
// @Description  Prices and availability are recomputed from the catalog on every read
// @Tags         cart
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/carts/{id} [get]
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	cart, err := h.cartService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
// @Summary      Add an item
// @Description  Adding a product already in the cart increases its quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Param        request body cartapp.AddItemRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/carts/{id}/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateItem godoc
// @Summary      Set item quantity
// @Description  A quantity of zero removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        request body cartapp.UpdateItemRequest true "Quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /store/carts/{id}/items/{product_id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParamUUID(c, "product_id")
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), id, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem godoc
// @Summary      Remove an item
// @Tags         cart
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /store/carts/{id}/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParamUUID(c, "product_id")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), id, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear godoc
// @Summary      Empty a cart
// @Tags         cart
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /store/carts/{id} [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	cart, err := h.cartService.Clear(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// ApplyCoupon godoc
// @Summary      Apply a coupon
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Param        request body cartapp.ApplyCouponRequest true "Coupon code"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/carts/{id}/coupon [post]
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req cartapp.ApplyCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.ApplyCoupon(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveCoupon godoc
// @Summary      Remove the coupon
// @Tags         cart
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /store/carts/{id}/coupon [delete]
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveCoupon(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}
