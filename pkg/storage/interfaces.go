package storage

import (
	"context"
	"fmt"
)

// Backend is the read capability the retrieval layer is written against.
// Implementations classify every failure into the package's sentinel errors
// before returning; raw backend errors never cross this boundary.
type Backend interface {
	// Get returns the complete object stored at key. Objects are bounded in
	// size (individual alert packets and schema documents), so the whole
	// payload is returned rather than a stream. Returns ErrNotFound when no
	// object exists at the key and ErrUnavailable for any other failure.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object is present at key. It is intended for
	// health and debug paths only; existence can change between the check and
	// a subsequent Get, so callers must still handle ErrNotFound from Get.
	Exists(ctx context.Context, key string) (bool, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error
}

// Backend type names accepted in Config.Type. They mirror the server's
// --backend flag choices.
const (
	TypeLocalFiles  = "local-files"
	TypeS3          = "s3"
	TypeGoogleCloud = "google-cloud"
)

// Config selects and configures a storage backend. It is set once at process
// startup and never mutated afterward.
type Config struct {
	Type string `yaml:"type"` // "local-files", "s3", or "google-cloud"

	// Local filesystem config
	LocalRoot string `yaml:"local_root"`

	// S3-compatible object store config
	S3Endpoint     string `yaml:"s3_endpoint"`
	S3Region       string `yaml:"s3_region"`
	S3Bucket       string `yaml:"s3_bucket"`
	S3AccessKey    string `yaml:"s3_access_key"`
	S3SecretKey    string `yaml:"s3_secret_key"`
	S3UsePathStyle bool   `yaml:"s3_use_path_style"`

	// Google Cloud Storage config
	GCPProject string `yaml:"gcp_project"`
	GCSBucket  string `yaml:"gcs_bucket"`
}

// DefaultConfig returns a Config suitable for local development.
func DefaultConfig() Config {
	return Config{
		Type:     TypeLocalFiles,
		S3Region: "us-east-1",
	}
}

// Validate checks that the configuration names exactly one usable backend.
// A bad configuration is a startup error, never a retrieval outcome.
func (c Config) Validate() error {
	switch c.Type {
	case TypeLocalFiles:
		if c.LocalRoot == "" {
			return fmt.Errorf("local root directory is required for %s storage", TypeLocalFiles)
		}
		if c.S3Bucket != "" || c.GCSBucket != "" {
			return fmt.Errorf("bucket configuration conflicts with %s storage", TypeLocalFiles)
		}
	case TypeS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("bucket is required for %s storage", TypeS3)
		}
		if c.LocalRoot != "" {
			return fmt.Errorf("local root configuration conflicts with %s storage", TypeS3)
		}
	case TypeGoogleCloud:
		if c.GCPProject == "" {
			return fmt.Errorf("project is required for %s storage", TypeGoogleCloud)
		}
		if c.GCSBucket == "" {
			return fmt.Errorf("bucket is required for %s storage", TypeGoogleCloud)
		}
		if c.LocalRoot != "" {
			return fmt.Errorf("local root configuration conflicts with %s storage", TypeGoogleCloud)
		}
	case "":
		return fmt.Errorf("storage type is required")
	default:
		return fmt.Errorf("invalid storage type: %s (must be %s, %s, or %s)",
			c.Type, TypeLocalFiles, TypeS3, TypeGoogleCloud)
	}
	return nil
}

// New constructs the backend named by cfg.Type. The returned Backend is
// immutable for the life of the process.
func New(ctx context.Context, cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("storage configuration: %w", err)
	}
	switch cfg.Type {
	case TypeLocalFiles:
		return NewFileSystemBackend(cfg.LocalRoot)
	case TypeS3:
		return NewS3Backend(ctx, cfg)
	case TypeGoogleCloud:
		return NewGCSBackend(ctx, cfg.GCSBucket)
	}
	// Unreachable after Validate.
	return nil, fmt.Errorf("invalid storage type: %s", cfg.Type)
}
