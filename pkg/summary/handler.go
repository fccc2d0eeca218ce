package summary

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"itam/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SummaryHandler struct {
	service SummaryService
}

func NewSummaryHandler(service SummaryService) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// RegisterRoutes mounts the summary endpoints behind auth. The health
// probe stays public so load balancers can reach it without a token.
func (h *SummaryHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	grp := router.Group("/api/summary", auth)
	grp.GET("", h.GetSummary)
	grp.GET("/export", h.ExportSummary)

	router.GET("/api/health", h.Health)
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// GetSummary godoc
// @Summary      Asset counts by type, department, brand and model
// @Tags         summary
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Router       /api/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	rows, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to fetch summary", nil)
		return
	}
	if rows == nil {
		rows = []SummaryRow{}
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", rows)
}

// ExportSummary godoc
// @Summary      Download the summary as an XLSX workbook
// @Tags         summary
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200 {file} binary
// @Router       /api/summary/export [get]
func (h *SummaryHandler) ExportSummary(c *gin.Context) {
	f, err := h.service.ExportXLSX(c.Request.Context())
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to export summary", nil)
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename=asset_summary.xlsx")
	if err := f.Write(c.Writer); err != nil {
		// Headers are already out at this point; surface it to gin's log.
		_ = c.Error(err)
	}
}

// Health godoc
// @Summary      Liveness probe with database status
// @Tags         summary
// @Produce      json
// @Success      200 {object} healthResponse
// @Router       /api/health [get]
func (h *SummaryHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:   "healthy",
		Database: h.service.DatabaseStatus(c.Request.Context()),
	})
}
