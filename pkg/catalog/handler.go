package catalog

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"itam/pkg/response"
)

type CatalogHandler struct {
	service CatalogService
}

func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	grp := router.Group("/api/assets", auth)
	grp.GET("/asset-types", h.GetAssetTypes)
	grp.GET("/specifications", h.GetAllSpecifications)
	grp.GET("/specifications/:type_name", h.GetSpecificationsForType)
	grp.GET("/brands", h.GetBrands)
	grp.POST("/brands", h.AddBrand)
}

type addBrandRequest struct {
	Brand  string   `json:"brand" binding:"required"`
	Models []string `json:"models"`
}

// GetAssetTypes godoc
// @Summary      List asset types
// @Description  Returns catalog types, or the built-in list marked source=fallback
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} assetTypesResponse
// @Router       /api/assets/asset-types [get]
func (h *CatalogHandler) GetAssetTypes(c *gin.Context) {
	types, fromFallback := h.service.ListAssetTypes(c.Request.Context())

	resp := assetTypesResponse{Success: true, Data: types}
	if fromFallback {
		resp.Source = "fallback"
	}
	c.JSON(http.StatusOK, resp)
}

// GetAllSpecifications godoc
// @Summary      List specification fields for every asset type
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Router       /api/assets/specifications [get]
func (h *CatalogHandler) GetAllSpecifications(c *gin.Context) {
	specs, err := h.service.AllSpecifications(c.Request.Context())
	if err != nil || len(specs) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "data": gin.H{}, "message": "Database unavailable"})
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", specs)
}

// GetSpecificationsForType godoc
// @Summary      List specification fields for one asset type
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        type_name path string true "Asset type"
// @Success      200 {object} response.APIResponse
// @Router       /api/assets/specifications/{type_name} [get]
func (h *CatalogHandler) GetSpecificationsForType(c *gin.Context) {
	typeName := c.Param("type_name")

	fields, err := h.service.SpecificationsForType(c.Request.Context(), typeName)
	if err != nil || len(fields) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"data":    gin.H{"fields": []SpecField{}},
			"message": fmt.Sprintf("No specifications found for %s", typeName),
		})
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", TypeSpecifications{Fields: fields})
}

// GetBrands godoc
// @Summary      List brands with their models
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Router       /api/assets/brands [get]
func (h *CatalogHandler) GetBrands(c *gin.Context) {
	brands, err := h.service.ListBrands(c.Request.Context())
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to fetch brands", nil)
		return
	}
	if brands == nil {
		brands = []Brand{}
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", brands)
}

// AddBrand godoc
// @Summary      Add a brand, optionally with models
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body addBrandRequest true "Brand details"
// @Success      201 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /api/assets/brands [post]
func (h *CatalogHandler) AddBrand(c *gin.Context) {
	var req addBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "brand is required", nil)
		return
	}

	if err := h.service.AddBrand(c.Request.Context(), req.Brand, req.Models); err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to add brand", nil)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, "Brand added successfully", nil)
}
