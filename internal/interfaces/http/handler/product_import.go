package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ProductImportHandler handles CSV product uploads
type ProductImportHandler struct {
	BaseHandler
	importService *catalogapp.ProductImportService
}

// NewProductImportHandler creates a new ProductImportHandler
func NewProductImportHandler(importService *catalogapp.ProductImportService) *ProductImportHandler {
	return &ProductImportHandler{importService: importService}
}

type importForm struct {
	ConflictMode string `form:"conflict_mode" binding:"omitempty,oneof=skip fail"`
	DryRun       bool   `form:"dry_run"`
}

var csvContentTypes = map[string]bool{
	"":                         true,
	"text/csv":                 true,
	"text/plain":               true,
	"application/octet-stream": true,
	"application/vnd.ms-excel": true,
}

// Import godoc
// @Summary      Import products from CSV
// @Description  Columns: name, price (required), slug, sku, description, compare_at_price, stock_quantity, category (slug), image_url, featured, active
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Param        conflict_mode formData string false "What to do with existing slugs or SKUs" Enums(skip, fail)
// @Param        dry_run formData bool false "Validate only"
// @Success      200 {object} dto.Response{data=catalogapp.ImportProductsResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/import [post]
func (h *ProductImportHandler) Import(c *gin.Context) {
	var form importForm
	if err := c.ShouldBind(&form); err != nil {
		h.bindError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if !csvContentTypes[header.Header.Get("Content-Type")] {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return
	}

	result, err := h.importService.Import(c.Request.Context(), file, catalogapp.ImportProductsRequest{
		ConflictMode: catalogapp.ConflictMode(form.ConflictMode),
		DryRun:       form.DryRun,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
