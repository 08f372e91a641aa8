package storage

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(t.TempDir(), "signing-key", "http://localhost:8080")
	assert.NoError(t, err)
	return store
}

func TestLocalStorage_PutAndOpen(t *testing.T) {
	store := newTestStorage(t)

	err := store.Put("applications/app-1/ID_DOCUMENT.pdf", []byte("first"), "application/pdf")
	assert.NoError(t, err)
	assert.True(t, store.Exists("applications/app-1/ID_DOCUMENT.pdf"))

	// Re-upload replaces the previous artifact
	err = store.Put("applications/app-1/ID_DOCUMENT.pdf", []byte("second"), "application/pdf")
	assert.NoError(t, err)

	file, err := store.Open("applications/app-1/ID_DOCUMENT.pdf")
	assert.NoError(t, err)
	defer file.Close()

	data, err := io.ReadAll(file)
	assert.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	store := newTestStorage(t)

	err := store.Put("../outside.txt", []byte("nope"), "application/pdf")
	assert.Error(t, err)

	_, err = store.Open("applications/../../etc/passwd")
	assert.Error(t, err)

	assert.False(t, store.Exists("../outside.txt"))
}

func TestLocalStorage_SignedURLRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	path := "applications/app-1/PAYSLIP.pdf"
	assert.NoError(t, store.Put(path, []byte("data"), "application/pdf"))

	url, err := store.SignedURL(path, 10*time.Minute)
	assert.NoError(t, err)
	assert.Contains(t, url, "http://localhost:8080/api/v1/files/"+path)

	var expires int64
	var token string
	_, err = fmt.Sscanf(url[strings.Index(url, "?"):], "?expires=%d&token=%s", &expires, &token)
	assert.NoError(t, err)

	assert.True(t, store.VerifySignature(path, expires, token))
}

func TestLocalStorage_VerifySignatureRejectsTampering(t *testing.T) {
	store := newTestStorage(t)
	path := "applications/app-1/PAYSLIP.pdf"

	expires := time.Now().Add(10 * time.Minute).Unix()
	token := store.sign(path, expires)

	assert.True(t, store.VerifySignature(path, expires, token))
	assert.False(t, store.VerifySignature("applications/app-2/PAYSLIP.pdf", expires, token), "a token must not transfer to another path")
	assert.False(t, store.VerifySignature(path, expires+60, token), "a token must not allow a stretched expiry")
	assert.False(t, store.VerifySignature(path, expires, token+"00"))
}

func TestLocalStorage_VerifySignatureRejectsExpired(t *testing.T) {
	store := newTestStorage(t)
	path := "applications/app-1/PAYSLIP.pdf"

	expires := time.Now().Add(-time.Minute).Unix()
	token := store.sign(path, expires)

	assert.False(t, store.VerifySignature(path, expires, token))
}

func TestIsValidContentType(t *testing.T) {
	assert.True(t, IsValidContentType("application/pdf"))
	assert.True(t, IsValidContentType("image/jpeg"))
	assert.True(t, IsValidContentType("image/png"))
	assert.False(t, IsValidContentType("application/zip"))
	assert.False(t, IsValidContentType("text/html"))
}

func TestIsValidExtension(t *testing.T) {
	assert.True(t, IsValidExtension(".pdf"))
	assert.True(t, IsValidExtension(".JPG"))
	assert.True(t, IsValidExtension(".jpeg"))
	assert.False(t, IsValidExtension(".gif"))
	assert.False(t, IsValidExtension(""))
}
