package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zarlend/zarlend-api/internal/storage"
)

// FileHandler serves stored documents through signed, expiring links. The
// route itself is public; the HMAC token is the authorization.
type FileHandler struct {
	storage *storage.LocalStorage
}

func NewFileHandler(store *storage.LocalStorage) *FileHandler {
	return &FileHandler{storage: store}
}

var contentTypesByExtension = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// @Summary Download File
// @Description Download a stored document using a signed link
// @Tags Files
// @Produce application/octet-stream
// @Param path path string true "Storage path"
// @Param expires query int true "Expiry unix timestamp"
// @Param token query string true "Signature token"
// @Success 200 {file} file "document"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /files/{path} [get]
func (h *FileHandler) Download(c *gin.Context) {
	relativePath := strings.TrimPrefix(c.Param("path"), "/")

	expires, err := strconv.ParseInt(c.Query("expires"), 10, 64)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired link"})
		return
	}
	if !h.storage.VerifySignature(relativePath, expires, c.Query("token")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired link"})
		return
	}

	file, err := h.storage.Open(relativePath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	contentType := contentTypesByExtension[strings.ToLower(filepath.Ext(relativePath))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
