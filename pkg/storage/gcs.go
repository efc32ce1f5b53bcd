package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSBackend serves the archive from a Google Cloud Storage bucket.
type GCSBackend struct {
	client *gcs.Client
	bucket string
}

// NewGCSBackend creates a GCS-backed Backend. It uses Application Default
// Credentials, which covers Workload Identity, service-account keys, and
// gcloud auth on a developer machine.
func NewGCSBackend(ctx context.Context, bucket string) (*GCSBackend, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSBackend{client: client, bucket: bucket}, nil
}

// Get fetches the object at key from the configured bucket. An absent object
// maps to ErrNotFound; everything else maps to ErrUnavailable.
func (b *GCSBackend) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := b.client.Bucket(b.bucket).Object(b.objectKey(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: gcs read %s: %v", ErrUnavailable, key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: gcs read %s: %v", ErrUnavailable, key, err)
	}
	return data, nil
}

// Exists checks object presence via object attrs.
func (b *GCSBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.Bucket(b.bucket).Object(b.objectKey(key)).Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: gcs attrs %s: %v", ErrUnavailable, key, err)
	}
	return true, nil
}

// HealthCheck verifies bucket reachability.
func (b *GCSBackend) HealthCheck(ctx context.Context) error {
	if _, err := b.client.Bucket(b.bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("%w: gcs bucket attrs %s: %v", ErrUnavailable, b.bucket, err)
	}
	return nil
}

// Close releases the underlying client connections.
func (b *GCSBackend) Close() error {
	return b.client.Close()
}

func (b *GCSBackend) objectKey(key string) string {
	return archivePrefix + "/" + key
}
