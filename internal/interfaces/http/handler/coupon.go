package handler

import (
	"github.com/gin-gonic/gin"
	promotionapp "github.com/storefront/backend/internal/application/promotion"
)

// CouponHandler handles coupon endpoints
type CouponHandler struct {
	BaseHandler
	couponService *promotionapp.CouponService
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(couponService *promotionapp.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

type couponQuery struct {
	Search    string `form:"search"`
	Active    *bool  `form:"active"`
	PartnerID string `form:"partner_id"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by" binding:"omitempty,oneof=created_at code value usage_count expires_at"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Validate godoc
// @Summary      Validate a coupon
// @Description  Checks a code against a cart subtotal and returns the discount it would give
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        request body promotionapp.ValidateCouponRequest true "Code and subtotal"
// @Success      200 {object} dto.Response{data=promotionapp.DiscountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/coupons/validate [post]
func (h *CouponHandler) Validate(c *gin.Context) {
	var req promotionapp.ValidateCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}

	discount, err := h.couponService.Validate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, discount)
}

// Create godoc
// @Summary      Create a coupon
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        request body promotionapp.CreateCouponRequest true "Coupon"
// @Success      201 {object} dto.Response{data=promotionapp.CouponResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/coupons [post]
func (h *CouponHandler) Create(c *gin.Context) {
	var req promotionapp.CreateCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}

	coupon, err := h.couponService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, coupon)
}

// GetByID godoc
// @Summary      Get a coupon
// @Tags         coupons
// @Produce      json
// @Param        id path string true "Coupon ID" format(uuid)
// @Success      200 {object} dto.Response{data=promotionapp.CouponResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/coupons/{id} [get]
func (h *CouponHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	coupon, err := h.couponService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupon)
}

// List godoc
// @Summary      List coupons
// @Tags         coupons
// @Produce      json
// @Param        search query string false "Code search"
// @Param        active query bool false "Active flag"
// @Param        partner_id query string false "Partner ID" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]promotionapp.CouponResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/coupons [get]
func (h *CouponHandler) List(c *gin.Context) {
	var q couponQuery
	if !h.BindQuery(c, &q) {
		return
	}
	partnerID, err := optionalUUID(q.PartnerID)
	if err != nil {
		h.BadRequest(c, "Invalid partner_id format")
		return
	}

	page, err := h.couponService.List(c.Request.Context(), promotionapp.CouponListFilter{
		Search:    q.Search,
		Active:    q.Active,
		PartnerID: partnerID,
		Page:      q.Page,
		PageSize:  q.PageSize,
		OrderBy:   q.OrderBy,
		OrderDir:  q.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Update godoc
// @Summary      Update a coupon
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        id path string true "Coupon ID" format(uuid)
// @Param        request body promotionapp.UpdateCouponRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=promotionapp.CouponResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/coupons/{id} [put]
func (h *CouponHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req promotionapp.UpdateCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}

	coupon, err := h.couponService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupon)
}

// Activate godoc
// @Summary      Activate a coupon
// @Tags         coupons
// @Produce      json
// @Param        id path string true "Coupon ID" format(uuid)
// @Success      200 {object} dto.Response{data=promotionapp.CouponResponse}
// @Security     BearerAuth
// @Router       /admin/coupons/{id}/activate [post]
func (h *CouponHandler) Activate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	coupon, err := h.couponService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupon)
}

// Deactivate godoc
// @Summary      Deactivate a coupon
// @Tags         coupons
// @Produce      json
// @Param        id path string true "Coupon ID" format(uuid)
// @Success      200 {object} dto.Response{data=promotionapp.CouponResponse}
// @Security     BearerAuth
// @Router       /admin/coupons/{id}/deactivate [post]
func (h *CouponHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	coupon, err := h.couponService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupon)
}

// Delete godoc
// @Summary      Delete a coupon
// @Tags         coupons
// @Param        id path string true "Coupon ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/coupons/{id} [delete]
func (h *CouponHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
