package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/models"
	"weddingbudget/internal/pagination"
	"weddingbudget/internal/services"
)

// CatalogHandler handles vendor catalog requests.
type CatalogHandler struct {
	catalogService services.CatalogServicer
	auditService   services.AuditServicer
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService services.CatalogServicer, auditService services.AuditServicer) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, auditService: auditService}
}

// ListVendorOptionsQuery holds the catalog listing filters.
type ListVendorOptionsQuery struct {
	pagination.PageRequest
	Category string `form:"category" binding:"omitempty,vendor_category"`
}

// VendorOptionInput is one catalog entry in an import.
type VendorOptionInput struct {
	ID         string   `json:"id" binding:"required,max=100"`
	Category   string   `json:"category" binding:"required,vendor_category"`
	Name       string   `json:"name" binding:"required,max=200"`
	PriceCents int64    `json:"price_cents" binding:"gte=0,lte=1000000000000"`
	Tags       []string `json:"tags" binding:"omitempty,max=20,dive,style_tag"`
	Reasons    []string `json:"reasons" binding:"omitempty,max=20,dive,max=100"`
	SortOrder  int      `json:"sort_order" binding:"gte=0"`
	IsActive   *bool    `json:"is_active"`
}

// ImportVendorOptionsRequest represents the request payload for a catalog
// import. Existing ids are only replaced when Overwrite is set.
type ImportVendorOptionsRequest struct {
	Options   []VendorOptionInput `json:"options" binding:"required,min=1,max=500,dive"`
	Overwrite bool                `json:"overwrite"`
}

// ListVendorOptions handles listing the active catalog.
// @Summary     List vendor options
// @Description Get a paginated list of active catalog entries, optionally for one category
// @Tags        catalog
// @Produce     json
// @Param       category  query string false "Category filter"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.VendorOption] "Paginated vendor options"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /vendor-options [get]
func (h *CatalogHandler) ListVendorOptions(c *gin.Context) {
	var query ListVendorOptionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var category *models.Category
	if query.Category != "" {
		cat := models.Category(query.Category)
		category = &cat
	}

	result, err := h.catalogService.ListOptions(c.Request.Context(), category, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"data":        result.Data,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_items": result.TotalItems,
		"total_pages": result.TotalPages,
		"has_next":    result.HasNext,
	})
}

// ImportVendorOptions handles bulk catalog imports from internal tooling.
// @Summary     Import vendor options
// @Description Insert or replace catalog entries
// @Tags        internal
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body ImportVendorOptionsRequest true "Catalog entries"
// @Success     200 {object} map[string]interface{} "Imported count"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /internal/vendor-options [post]
func (h *CatalogHandler) ImportVendorOptions(c *gin.Context) {
	var req ImportVendorOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	opts := make([]models.VendorOption, len(req.Options))
	for i, in := range req.Options {
		active := true
		if in.IsActive != nil {
			active = *in.IsActive
		}
		opts[i] = models.VendorOption{
			ID:         in.ID,
			Category:   models.Category(in.Category),
			Name:       in.Name,
			PriceCents: in.PriceCents,
			Tags:       in.Tags,
			Reasons:    in.Reasons,
			SortOrder:  in.SortOrder,
			IsActive:   active,
		}
	}

	n, err := h.catalogService.ImportOptions(c.Request.Context(), opts, req.Overwrite)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("internal", services.ActionImportCatalog, "vendor_option", "", c.ClientIP(),
		map[string]interface{}{"count": n, "overwrite": req.Overwrite})

	respond(c, http.StatusOK, gin.H{"imported": n})
}
