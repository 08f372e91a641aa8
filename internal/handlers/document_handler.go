package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zarlend/zarlend-api/internal/config"
	"github.com/zarlend/zarlend-api/internal/middleware"
	"github.com/zarlend/zarlend-api/internal/services"
	"github.com/zarlend/zarlend-api/internal/storage"
	"github.com/zarlend/zarlend-api/pkg/logger"
)

type DocumentHandler struct {
	documentService *services.DocumentService
	storage         *storage.LocalStorage
	signedURLTTL    time.Duration
	maxUploadBytes  int64
}

func NewDocumentHandler(documentService *services.DocumentService, store *storage.LocalStorage, cfg *config.Config) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		storage:         store,
		signedURLTTL:    time.Duration(cfg.SignedURLTTLSecs) * time.Second,
		maxUploadBytes:  cfg.MaxUploadBytes,
	}
}

// @Summary Upload Document
// @Description Upload one supporting document for the caller's own application
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param application_id formData string true "Application ID"
// @Param type formData string true "Document type"
// @Param file formData file true "Document file"
// @Success 201 {object} models.Document
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Security BearerAuth
// @Router /uploads [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	applicationID := c.PostForm("application_id")
	documentType := c.PostForm("type")
	if applicationID == "" || documentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application_id and type are required"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is too large"})
		return
	}

	// One extra byte so an over-limit stream is caught even when the
	// declared size lied.
	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		logger.Error("failed to read upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	subject := middleware.GetSubject(c)
	doc, err := h.documentService.Upload(c.Request.Context(), subject, services.UploadInput{
		ApplicationID: applicationID,
		DocumentType:  documentType,
		Filename:      header.Filename,
		ContentType:   header.Header.Get("Content-Type"),
		Data:          data,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// @Summary Upload Status
// @Description Get the required-document checklist for the caller's latest application
// @Tags Documents
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /uploads/status [get]
func (h *DocumentHandler) Status(c *gin.Context) {
	subject := middleware.GetSubject(c)
	applicationID, checklist, err := h.documentService.ChecklistForSubject(c.Request.Context(), subject)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application_id": applicationID,
		"documents":      checklist,
	})
}

// @Summary List Application Documents
// @Description Get all documents for an application with expiring download links
// @Tags Admin
// @Produce json
// @Param application_id path string true "Application ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/applications/{application_id}/documents [get]
func (h *DocumentHandler) AdminIndex(c *gin.Context) {
	docs, err := h.documentService.ListByApplication(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		item := gin.H{"document": doc}
		url, err := h.storage.SignedURL(doc.StoragePath, h.signedURLTTL)
		if err != nil {
			logger.Warn("failed to sign document url", "path", doc.StoragePath, "error", err)
		} else {
			item["url"] = url
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"documents": items})
}

// DocumentReviewRequest is the reviewer's verdict on one document.
type DocumentReviewRequest struct {
	ReviewStatus string  `json:"review_status" binding:"required"`
	Notes        *string `json:"notes"`
}

// @Summary Review Document
// @Description Record a verdict on one document and re-derive the application status
// @Tags Admin
// @Accept json
// @Produce json
// @Param document_id path string true "Document ID"
// @Param review body DocumentReviewRequest true "Review verdict"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/documents/{document_id} [patch]
func (h *DocumentHandler) AdminReview(c *gin.Context) {
	var req DocumentReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	actor := middleware.GetSubject(c)
	doc, summary, err := h.documentService.Review(c.Request.Context(), actor, c.Param("document_id"), req.ReviewStatus, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"summary":  summary,
	})
}
