package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// SignedUploadURL returns a V4 signed URL that lets the browser PUT an object
// with the given content type directly into the bucket.
func SignedUploadURL(client *storage.Client, bucket, objectPath, contentType string, expires time.Time) (string, error) {
	return client.Bucket(bucket).SignedURL(objectPath, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      "PUT",
		ContentType: contentType,
		Expires:     expires,
	})
}

// PublicURL builds a public URL for an object (assuming public read access)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

// UploadGrant is a short-lived permission to PUT one object.
type UploadGrant struct {
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

var errUploadsDisabled = errors.New("gcs uploads are not configured")

// GCSUploader signs direct browser uploads into one bucket.
type GCSUploader struct {
	Client *storage.Client
	Bucket string
	TTL    time.Duration
}

func NewGCSUploader(client *storage.Client, bucket string, ttl time.Duration) *GCSUploader {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &GCSUploader{Client: client, Bucket: bucket, TTL: ttl}
}

func (u *GCSUploader) SignUpload(_ context.Context, objectPath, contentType string) (UploadGrant, error) {
	if u == nil || u.Client == nil || u.Bucket == "" {
		return UploadGrant{}, errUploadsDisabled
	}
	exp := time.Now().Add(u.TTL)
	signed, err := SignedUploadURL(u.Client, u.Bucket, objectPath, contentType, exp)
	if err != nil {
		return UploadGrant{}, err
	}
	return UploadGrant{UploadURL: signed, PublicURL: PublicURL(u.Bucket, objectPath), ExpiresAt: exp}, nil
}
