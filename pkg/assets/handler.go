package assets

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"itam/pkg/response"
)

type AssetHandler struct {
	service AssetService
	storage Storage
}

func NewAssetHandler(service AssetService, storage Storage) *AssetHandler {
	return &AssetHandler{service: service, storage: storage}
}

func (h *AssetHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	grp := router.Group("/api/assets", auth)
	grp.GET("", h.ListAssets)
	grp.POST("", h.CreateAsset)
	grp.GET("/assignment-history", h.AllAssignmentHistory)
	grp.GET("/assignment-history/:asset_id", h.AssignmentHistory)
	grp.DELETE("/bulk-delete", h.BulkDelete)
	grp.GET("/:asset_id", h.GetAsset)
	grp.PUT("/:asset_id", h.UpdateAsset)
	grp.POST("/:asset_id/files", h.UploadFile)
}

type createAssetRequest struct {
	AssetType      string            `json:"assetType" binding:"required"`
	SerialNumber   string            `json:"serialNumber" binding:"required"`
	Brand          string            `json:"brand" binding:"required"`
	Model          string            `json:"model" binding:"required"`
	Specifications map[string]string `json:"specifications"`
	PurchaseDate   string            `json:"purchaseDate"`
	PurchaseCost   *float64          `json:"purchaseCost"`
	GSTPaid        *float64          `json:"gstPaid"`
	WarrantyExpiry string            `json:"warrantyExpiry"`
	LeaseCost      *float64          `json:"leaseCost"`
	LeaseExpiry    string            `json:"leaseExpiry"`
	IsRental       bool              `json:"isRental"`
	AssignedTo     string            `json:"assignedTo"`
	RepairStatus   bool              `json:"repairStatus"`
	IsTempAsset    bool              `json:"isTempAsset"`
}

type updateAssetRequest struct {
	AssignedTo   string `json:"assignedTo"`
	RepairStatus bool   `json:"repairStatus"`
}

type bulkDeleteRequest struct {
	AssetIDs []string `json:"assetIds" binding:"required"`
}

type createAssetResponse struct {
	Success bool   `json:"success"`
	AssetID string `json:"assetId"`
	Message string `json:"message"`
}

type bulkDeleteResponse struct {
	Success      bool   `json:"success"`
	DeletedCount int64  `json:"deletedCount"`
	Message      string `json:"message"`
}

// ListAssets godoc
// @Summary      List all assets
// @Description  Returns assets keyed by asset id, specifications inlined
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Router       /api/assets [get]
func (h *AssetHandler) ListAssets(c *gin.Context) {
	result, err := h.service.ListAssets(c.Request.Context())
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to fetch assets", nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", result)
}

// GetAsset godoc
// @Summary      Get one asset
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Param        asset_id path string true "Asset ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/assets/{asset_id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id := c.Param("asset_id")

	detail, err := h.service.GetAsset(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			response.SendAPIResponse(c, http.StatusNotFound, false, fmt.Sprintf("Asset %s not found", id), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to fetch asset", nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", detail)
}

// CreateAsset godoc
// @Summary      Record a new asset
// @Description  Generates the AST_<n> id, stores specifications and opens the assignment span
// @Tags         assets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body createAssetRequest true "Asset details"
// @Success      200 {object} createAssetResponse
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /api/assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "assetType, serialNumber, brand and model are required", nil)
		return
	}

	input := CreateAssetInput{
		AssetType:      req.AssetType,
		SerialNumber:   req.SerialNumber,
		Brand:          req.Brand,
		Model:          req.Model,
		Specifications: req.Specifications,
		PurchaseCost:   req.PurchaseCost,
		GSTPaid:        req.GSTPaid,
		LeaseCost:      req.LeaseCost,
		IsRental:       req.IsRental,
		AssignedTo:     req.AssignedTo,
		RepairStatus:   req.RepairStatus,
		IsTempAsset:    req.IsTempAsset,
	}

	var err error
	if input.PurchaseDate, err = parseDate(req.PurchaseDate); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid purchaseDate", nil)
		return
	}
	if input.WarrantyExpiry, err = parseDate(req.WarrantyExpiry); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid warrantyExpiry", nil)
		return
	}
	if input.LeaseExpiry, err = parseDate(req.LeaseExpiry); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid leaseExpiry", nil)
		return
	}

	assetID, err := h.service.CreateAsset(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, ErrDuplicateAsset) {
			response.SendAPIResponse(c, http.StatusConflict, false, ErrDuplicateAsset.Error(), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to create asset", nil)
		return
	}

	c.JSON(http.StatusOK, createAssetResponse{
		Success: true,
		AssetID: assetID,
		Message: fmt.Sprintf("Asset %s created successfully", assetID),
	})
}

// UpdateAsset godoc
// @Summary      Update assignment and repair status
// @Description  Closes the previous assignment span and opens a new one when the assignee changes
// @Tags         assets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        asset_id path string true "Asset ID"
// @Param        request body updateAssetRequest true "New assignment"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/assets/{asset_id} [put]
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	id := c.Param("asset_id")

	var req updateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	if err := h.service.UpdateAssignment(c.Request.Context(), id, req.AssignedTo, req.RepairStatus); err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			response.SendAPIResponse(c, http.StatusNotFound, false, fmt.Sprintf("Asset %s not found", id), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to update asset", nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, fmt.Sprintf("Asset %s updated successfully", id), nil)
}

// BulkDelete godoc
// @Summary      Delete multiple assets
// @Tags         assets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body bulkDeleteRequest true "Asset IDs"
// @Success      200 {object} bulkDeleteResponse
// @Failure      400 {object} response.APIResponse
// @Router       /api/assets/bulk-delete [delete]
func (h *AssetHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.AssetIDs) == 0 {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "assetIds is required", nil)
		return
	}

	deleted, err := h.service.DeleteAssets(c.Request.Context(), req.AssetIDs)
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to delete assets", nil)
		return
	}

	c.JSON(http.StatusOK, bulkDeleteResponse{
		Success:      true,
		DeletedCount: deleted,
		Message:      fmt.Sprintf("Successfully deleted %d asset(s)", deleted),
	})
}

// AssignmentHistory godoc
// @Summary      Assignment history for one asset
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Param        asset_id path string true "Asset ID"
// @Success      200 {object} response.APIResponse
// @Router       /api/assets/assignment-history/{asset_id} [get]
func (h *AssetHandler) AssignmentHistory(c *gin.Context) {
	id := c.Param("asset_id")

	entries, err := h.service.AssetHistory(c.Request.Context(), id)
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to fetch assignment history", nil)
		return
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", entries)
}

// AllAssignmentHistory godoc
// @Summary      Assignment history for every asset
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Router       /api/assets/assignment-history [get]
func (h *AssetHandler) AllAssignmentHistory(c *gin.Context) {
	result, err := h.service.AllAssetHistory(c.Request.Context())
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to fetch assignment history", nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", result)
}

// UploadFile godoc
// @Summary      Attach a document to an asset
// @Description  Accepts multipart form data; kind is image, receipt or warranty
// @Tags         assets
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        asset_id path string true "Asset ID"
// @Param        kind formData string false "Document kind" default(image)
// @Param        file formData file true "File to attach"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/assets/{asset_id}/files [post]
func (h *AssetHandler) UploadFile(c *gin.Context) {
	id := c.Param("asset_id")

	kind := c.DefaultPostForm("kind", "image")
	switch kind {
	case "image", "receipt", "warranty":
	default:
		response.SendAPIResponse(c, http.StatusBadRequest, false, "kind must be image, receipt or warranty", nil)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "file is required", nil)
		return
	}

	path, err := h.storage.Save(file, id, kind)
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to store file", nil)
		return
	}

	if err := h.service.AttachFile(c.Request.Context(), id, kind, path); err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			response.SendAPIResponse(c, http.StatusNotFound, false, fmt.Sprintf("Asset %s not found", id), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to attach file", nil)
		return
	}

	response.SendAPIResponse(c, http.StatusOK, true, "File uploaded successfully", gin.H{"path": path})
}

// parseDate accepts bare dates and RFC3339 timestamps, returning nil for
// empty input.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", value)
}
