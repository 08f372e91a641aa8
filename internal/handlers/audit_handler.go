package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zarlend/zarlend-api/internal/services"
)

const defaultTrailLimit = 50

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary Application Audit Trail
// @Description Get the merged review and upload activity for an application, newest first. The limit applies to each log kind separately.
// @Tags Admin
// @Produce json
// @Param application_id path string true "Application ID"
// @Param limit query int false "Maximum entries per log kind (1-50)" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/applications/{application_id}/logs [get]
func (h *AuditHandler) Logs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultTrailLimit)))
	if err != nil || limit < 1 || limit > defaultTrailLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 50"})
		return
	}

	events, err := h.auditService.Trail(c.Request.Context(), c.Param("application_id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
