package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores media objects and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// ObjectPath builds "<kind>/<owner>/<uuid><ext>" keeping the original extension.
func ObjectPath(kind, owner, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(kind, owner, uuid.NewString()+ext)
}

// Driver names accepted by STORAGE_DRIVER.
const (
	DriverGCS    = "gcs"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// ErrNotConfigured is returned by uploaders missing a bucket.
var ErrNotConfigured = errors.New("storage not configured")
