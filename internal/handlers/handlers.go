package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zarlend/zarlend-api/internal/config"
	"github.com/zarlend/zarlend-api/internal/services"
	"github.com/zarlend/zarlend-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health      *HealthHandler
	Application *ApplicationHandler
	Document    *DocumentHandler
	Audit       *AuditHandler
	Metrics     *MetricsHandler
	File        *FileHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, store *storage.LocalStorage, cfg *config.Config) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(),
		Application: NewApplicationHandler(svcs.Application, svcs.Metrics),
		Document:    NewDocumentHandler(svcs.Document, store, cfg),
		Audit:       NewAuditHandler(svcs.Audit),
		Metrics:     NewMetricsHandler(svcs.Metrics, svcs.Export),
		File:        NewFileHandler(store),
	}
}

// respondError maps a service error kind to an HTTP status. Storage and
// driver details never reach the client; unknown errors collapse to a 500.
func respondError(c *gin.Context, err error) {
	var active *services.ActiveApplicationError
	if errors.As(err, &active) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          active.Error(),
			"application_id": active.ApplicationID,
			"status":         active.Status,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
