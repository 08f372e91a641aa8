package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LocalStorage keeps uploaded artifacts on the local filesystem and hands out
// expiring HMAC-signed links served by the /files route. Callers only ever see
// opaque relative paths; file bytes are never inspected here.
type LocalStorage struct {
	basePath   string
	signingKey []byte
	baseURL    string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath, signingKey, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		basePath:   basePath,
		signingKey: []byte(signingKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put writes data under the given relative path, replacing any previous
// artifact at the same path (re-upload semantics).
func (s *LocalStorage) Put(relativePath string, data []byte, contentType string) error {
	fullPath, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Open returns the stored file for reading
func (s *LocalStorage) Open(relativePath string) (*os.File, error) {
	fullPath, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	fullPath, err := s.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

// SignedURL returns an expiring link for the path. The signature covers the
// path and the expiry instant, so neither can be swapped without the key.
func (s *LocalStorage) SignedURL(relativePath string, ttl time.Duration) (string, error) {
	if _, err := s.resolve(relativePath); err != nil {
		return "", err
	}
	expires := time.Now().Add(ttl).Unix()
	token := s.sign(relativePath, expires)
	// Stored paths only ever contain uuid segments and document type names,
	// so the path goes into the URL as-is.
	return fmt.Sprintf("%s/api/v1/files/%s?expires=%d&token=%s",
		s.baseURL, relativePath, expires, token), nil
}

// VerifySignature checks a token produced by SignedURL and that it has not expired.
func (s *LocalStorage) VerifySignature(relativePath string, expires int64, token string) bool {
	if time.Now().Unix() > expires {
		return false
	}
	expected := s.sign(relativePath, expires)
	return hmac.Equal([]byte(expected), []byte(token))
}

func (s *LocalStorage) sign(relativePath string, expires int64) string {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(relativePath))
	mac.Write([]byte("|"))
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// resolve joins the relative path under basePath and rejects traversal.
func (s *LocalStorage) resolve(relativePath string) (string, error) {
	cleaned := filepath.Clean("/" + relativePath)
	full := filepath.Join(s.basePath, cleaned)
	if !strings.HasPrefix(full, filepath.Clean(s.basePath)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage path: %s", relativePath)
	}
	return full, nil
}

// ValidContentTypes returns allowed MIME types for uploads
func ValidContentTypes() map[string]bool {
	return map[string]bool{
		"application/pdf": true,
		"image/jpeg":      true,
		"image/jpg":       true,
		"image/png":       true,
	}
}

// IsValidContentType checks if the content type is allowed
func IsValidContentType(contentType string) bool {
	return ValidContentTypes()[contentType]
}

// ValidExtensions returns allowed file extensions for uploads
func ValidExtensions() map[string]bool {
	return map[string]bool{
		".pdf":  true,
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}
}

// IsValidExtension checks if the (lowercased) extension is allowed
func IsValidExtension(ext string) bool {
	return ValidExtensions()[strings.ToLower(ext)]
}
