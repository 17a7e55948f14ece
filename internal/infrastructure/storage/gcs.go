package storage

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/videotube-api/pkg/helpers"
)

// GCSUploader writes objects to a Google Cloud Storage bucket.
type GCSUploader struct {
	Client *storage.Client
	Bucket string
}

func NewGCSUploader(client *storage.Client, bucket string) *GCSUploader {
	return &GCSUploader{Client: client, Bucket: bucket}
}

func (u *GCSUploader) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if u.Client == nil || u.Bucket == "" {
		return "", ErrNotConfigured
	}
	return helpers.UploadObject(ctx, u.Client, u.Bucket, objectPath, contentType, r)
}

var _ Uploader = (*GCSUploader)(nil)
