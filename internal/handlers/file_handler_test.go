package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/zarlend/zarlend-api/internal/storage"
)

func fileTestRouter(t *testing.T) (*gin.Engine, *storage.LocalStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStorage(t.TempDir(), "signing-key", "http://localhost:8080")
	assert.NoError(t, err)

	router := gin.New()
	router.GET("/api/v1/files/*path", NewFileHandler(store).Download)
	return router, store
}

func TestFileHandler_Download_WithValidSignature(t *testing.T) {
	router, store := fileTestRouter(t)

	path := "applications/app-1/ID_DOCUMENT.pdf"
	assert.NoError(t, store.Put(path, []byte("%PDF-1.4"), "application/pdf"))

	url, err := store.SignedURL(path, 10*time.Minute)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestFileHandler_Download_RejectsBadToken(t *testing.T) {
	router, store := fileTestRouter(t)

	path := "applications/app-1/ID_DOCUMENT.pdf"
	assert.NoError(t, store.Put(path, []byte("%PDF-1.4"), "application/pdf"))

	expires := time.Now().Add(10 * time.Minute).Unix()
	url := fmt.Sprintf("/api/v1/files/%s?expires=%d&token=deadbeef", path, expires)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFileHandler_Download_RejectsMissingExpiry(t *testing.T) {
	router, _ := fileTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/applications/app-1/ID_DOCUMENT.pdf?token=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFileHandler_Download_MissingFile(t *testing.T) {
	router, store := fileTestRouter(t)

	url, err := store.SignedURL("applications/app-1/PAYSLIP.pdf", 10*time.Minute)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
