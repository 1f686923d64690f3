package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/storefront/backend/internal/application/partner"
)

// PartnerHandler handles affiliate partner endpoints
type PartnerHandler struct {
	BaseHandler
	partnerService *partnerapp.PartnerService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(partnerService *partnerapp.PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService}
}

// Create godoc
// @Summary      Create a partner
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreatePartnerRequest true "Partner"
// @Success      201 {object} dto.Response{data=partnerapp.PartnerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/partners [post]
func (h *PartnerHandler) Create(c *gin.Context) {
	var req partnerapp.CreatePartnerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	partner, err := h.partnerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, partner)
}

// GetByID godoc
// @Summary      Get a partner
// @Tags         partners
// @Produce      json
// @Param        id path string true "Partner ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.PartnerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/partners/{id} [get]
func (h *PartnerHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	partner, err := h.partnerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, partner)
}

// List godoc
// @Summary      List partners
// @Tags         partners
// @Produce      json
// @Param        search query string false "Name, email or code search"
// @Param        active query bool false "Active flag"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]partnerapp.PartnerResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/partners [get]
func (h *PartnerHandler) List(c *gin.Context) {
	var filter partnerapp.PartnerListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	page, err := h.partnerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Update godoc
// @Summary      Update a partner
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        id path string true "Partner ID" format(uuid)
// @Param        request body partnerapp.UpdatePartnerRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=partnerapp.PartnerResponse}
// @Security     BearerAuth
// @Router       /admin/partners/{id} [put]
func (h *PartnerHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdatePartnerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	partner, err := h.partnerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, partner)
}

// Activate godoc
// @Summary      Activate a partner
// @Tags         partners
// @Produce      json
// @Param        id path string true "Partner ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.PartnerResponse}
// @Security     BearerAuth
// @Router       /admin/partners/{id}/activate [post]
func (h *PartnerHandler) Activate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	partner, err := h.partnerService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, partner)
}

// Deactivate godoc
// @Summary      Deactivate a partner
// @Tags         partners
// @Produce      json
// @Param        id path string true "Partner ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.PartnerResponse}
// @Security     BearerAuth
// @Router       /admin/partners/{id}/deactivate [post]
func (h *PartnerHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	partner, err := h.partnerService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, partner)
}

// Delete godoc
// @Summary      Delete a partner
// @Tags         partners
// @Param        id path string true "Partner ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /admin/partners/{id} [delete]
func (h *PartnerHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.partnerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
