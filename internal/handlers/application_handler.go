package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zarlend/zarlend-api/internal/middleware"
	"github.com/zarlend/zarlend-api/internal/models"
	"github.com/zarlend/zarlend-api/internal/services"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
	metricsService     *services.MetricsService
}

func NewApplicationHandler(applicationService *services.ApplicationService, metricsService *services.MetricsService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService, metricsService: metricsService}
}

// @Summary Submit Application
// @Description Submit a new loan application for the authenticated user
// @Tags Applications
// @Accept json
// @Produce json
// @Param application body services.IntakeInput true "Application details"
// @Success 201 {object} models.ApplicationResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Security BearerAuth
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	var input services.IntakeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	subject := middleware.GetSubject(c)
	email := middleware.GetUserEmail(c)

	app, err := h.applicationService.Submit(c.Request.Context(), subject, email, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app.ToResponse())
}

// @Summary My Application
// @Description Get the caller's latest application plus recent history
// @Tags Applications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /me/application [get]
func (h *ApplicationHandler) Me(c *gin.Context) {
	subject := middleware.GetSubject(c)

	history, err := h.applicationService.History(c.Request.Context(), subject, 3)
	if err != nil {
		respondError(c, err)
		return
	}

	var latest interface{}
	responses := make([]models.ApplicationResponse, 0, len(history))
	for _, app := range history {
		responses = append(responses, app.ToResponse())
	}
	if len(responses) > 0 {
		latest = responses[0]
	}

	c.JSON(http.StatusOK, gin.H{
		"application": latest,
		"history":     responses,
	})
}

// @Summary My Role
// @Description Get the caller's role as seen by the API
// @Tags Applications
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /me/role [get]
func (h *ApplicationHandler) Role(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"role": middleware.GetUserRole(c),
	})
}

// @Summary List Applications
// @Description Get all applications with per-status counts
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/applications [get]
func (h *ApplicationHandler) AdminIndex(c *gin.Context) {
	apps, err := h.applicationService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	counts, err := h.metricsService.GroupByStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, app.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": responses,
		"counts":       counts,
	})
}

// @Summary Get Application
// @Description Get one application with applicant details
// @Tags Admin
// @Produce json
// @Param application_id path string true "Application ID"
// @Success 200 {object} models.ApplicationResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/applications/{application_id} [get]
func (h *ApplicationHandler) AdminShow(c *gin.Context) {
	app, err := h.applicationService.FindByIDWithUser(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.ToResponse())
}

// ReviewRequest is the staff decision payload. Absent fields are left
// untouched; an empty status string is rejected, not treated as absent.
type ReviewRequest struct {
	Status        *string `json:"status"`
	AdminNotes    *string `json:"admin_notes"`
	ClientMessage *string `json:"client_message"`
}

// @Summary Review Application
// @Description Apply a staff decision (status, notes, client message) to an application
// @Tags Admin
// @Accept json
// @Produce json
// @Param application_id path string true "Application ID"
// @Param review body ReviewRequest true "Review decision"
// @Success 200 {object} models.ApplicationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/applications/{application_id} [patch]
func (h *ApplicationHandler) AdminReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	actor := middleware.GetSubject(c)
	app, err := h.applicationService.Review(c.Request.Context(), actor, c.Param("application_id"), req.Status, req.AdminNotes, req.ClientMessage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app.ToResponse())
}
