package repairs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"itam/pkg/response"
)

type RepairHandler struct {
	service RepairService
}

func NewRepairHandler(service RepairService) *RepairHandler {
	return &RepairHandler{service: service}
}

func (h *RepairHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	grp := router.Group("/api/assets/repairs", auth)
	grp.GET("", h.ListOpenRepairs)
	grp.POST("/start", h.StartRepair)
	grp.POST("/end", h.EndRepair)
}

type startRepairRequest struct {
	AssetID       string `json:"assetId" binding:"required"`
	RepairDetails string `json:"repairDetails" binding:"required"`
	TempAssetID   string `json:"tempAssetId"`
}

type endRepairRequest struct {
	AssetID string `json:"assetId" binding:"required"`
}

// StartRepair godoc
// @Summary      Put an asset under repair
// @Description  Opens a repair tracker row; an optional temp asset is lent to the holder
// @Tags         repairs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body startRepairRequest true "Repair details"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /api/assets/repairs/start [post]
func (h *RepairHandler) StartRepair(c *gin.Context) {
	var req startRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "assetId and repairDetails are required", nil)
		return
	}
	if req.TempAssetID == req.AssetID {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "tempAssetId must differ from assetId", nil)
		return
	}

	input := StartRepairInput{
		AssetID:       req.AssetID,
		TempAssetID:   req.TempAssetID,
		RepairDetails: req.RepairDetails,
	}
	if err := h.service.StartRepair(c.Request.Context(), input); err != nil {
		switch {
		case errors.Is(err, ErrAssetNotFound):
			response.SendAPIResponse(c, http.StatusNotFound, false, fmt.Sprintf("Asset %s not found", req.AssetID), nil)
		case errors.Is(err, ErrTempAssetNotFound):
			response.SendAPIResponse(c, http.StatusNotFound, false, fmt.Sprintf("Temp asset %s not found", req.TempAssetID), nil)
		case errors.Is(err, ErrRepairInProgress):
			response.SendAPIResponse(c, http.StatusConflict, false, fmt.Sprintf("Asset %s is already under repair", req.AssetID), nil)
		default:
			response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to start repair", nil)
		}
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, fmt.Sprintf("Repair started for asset %s", req.AssetID), nil)
}

// EndRepair godoc
// @Summary      Close an open repair
// @Description  Clears the repair flag and takes the temp asset back
// @Tags         repairs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body endRepairRequest true "Asset ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /api/assets/repairs/end [post]
func (h *RepairHandler) EndRepair(c *gin.Context) {
	var req endRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "assetId is required", nil)
		return
	}

	if err := h.service.EndRepair(c.Request.Context(), req.AssetID); err != nil {
		switch {
		case errors.Is(err, ErrAssetNotFound):
			response.SendAPIResponse(c, http.StatusNotFound, false, fmt.Sprintf("Asset %s not found", req.AssetID), nil)
		case errors.Is(err, ErrNoOpenRepair):
			response.SendAPIResponse(c, http.StatusConflict, false, fmt.Sprintf("No repair in progress for asset %s", req.AssetID), nil)
		default:
			response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to end repair", nil)
		}
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, fmt.Sprintf("Repair ended for asset %s", req.AssetID), nil)
}

// ListOpenRepairs godoc
// @Summary      List assets currently under repair
// @Tags         repairs
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Router       /api/assets/repairs [get]
func (h *RepairHandler) ListOpenRepairs(c *gin.Context) {
	views, err := h.service.OpenRepairs(c.Request.Context())
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to fetch repairs", nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", views)
}
