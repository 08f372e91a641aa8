package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zarlend/zarlend-api/internal/services"
)

type MetricsHandler struct {
	metricsService *services.MetricsService
	exportService  *services.ExportService
}

func NewMetricsHandler(metricsService *services.MetricsService, exportService *services.ExportService) *MetricsHandler {
	return &MetricsHandler{metricsService: metricsService, exportService: exportService}
}

// @Summary Dashboard Metrics
// @Description Get application totals overall, per status, and for the trailing week
// @Tags Admin
// @Produce json
// @Success 200 {object} services.Overview
// @Security BearerAuth
// @Router /admin/metrics [get]
func (h *MetricsHandler) Overview(c *gin.Context) {
	overview, err := h.metricsService.GetOverview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// @Summary Export Applications
// @Description Download every application as an XLSX workbook
// @Tags Admin
// @Produce application/octet-stream
// @Success 200 {file} file "workbook"
// @Security BearerAuth
// @Router /admin/applications/export [get]
func (h *MetricsHandler) Export(c *gin.Context) {
	data, filename, err := h.exportService.ExportApplicationsXLSX(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Application Summary PDF
// @Description Download one application with its document checklist as PDF
// @Tags Admin
// @Produce application/pdf
// @Param application_id path string true "Application ID"
// @Success 200 {file} file "summary"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/applications/{application_id}/summary_pdf [get]
func (h *MetricsHandler) SummaryPDF(c *gin.Context) {
	data, filename, err := h.exportService.ExportApplicationSummaryPDF(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
