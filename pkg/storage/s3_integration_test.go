//go:build integration

package storage

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupMinIO starts a MinIO container and returns an S3Backend pointing at
// it, plus a raw client for seeding objects and a cleanup func.
func setupMinIO(t *testing.T) (*S3Backend, *s3.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	}

	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "Failed to start MinIO container")

	host, err := minioContainer.Host(ctx)
	require.NoError(t, err)
	port, err := minioContainer.MappedPort(ctx, "9000")
	require.NoError(t, err)
	endpoint := "http://" + host + ":" + port.Port()

	cfg := Config{
		Type:           TypeS3,
		S3Endpoint:     endpoint,
		S3Region:       "us-east-1",
		S3Bucket:       "alert-archive",
		S3AccessKey:    "minioadmin",
		S3SecretKey:    "minioadmin",
		S3UsePathStyle: true,
	}

	backend, err := NewS3Backend(ctx, cfg)
	require.NoError(t, err, "Failed to create S3 backend")

	// Separate client for test setup: bucket creation and object seeding.
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(cfg.S3Bucket),
	})
	require.NoError(t, err, "Failed to create bucket")

	cleanup := func() {
		if err := minioContainer.Terminate(ctx); err != nil {
			t.Logf("Warning: Failed to terminate MinIO container: %v", err)
		}
	}

	return backend, client, cleanup
}

func TestS3Backend_RoundTrip_Integration(t *testing.T) {
	backend, client, cleanup := setupMinIO(t)
	defer cleanup()

	ctx := context.Background()

	key := mustResolve(t, KindSchema, "v1")
	payload := []byte(`{"type":"record","name":"alert","fields":[]}`)

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String("alert-archive"),
		Key:    aws.String(backend.objectKey(key)),
		Body:   bytes.NewReader(payload),
	})
	require.NoError(t, err)

	got, err := backend.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	ok, err := backend.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	// Deleting the object must turn subsequent reads into ErrNotFound.
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String("alert-archive"),
		Key:    aws.String(backend.objectKey(key)),
	})
	require.NoError(t, err)

	_, err = backend.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err = backend.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3Backend_MissingObject_Integration(t *testing.T) {
	backend, _, cleanup := setupMinIO(t)
	defer cleanup()

	_, err := backend.Get(context.Background(), mustResolve(t, KindAlert, "never-written"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Backend_Unreachable_Integration(t *testing.T) {
	// An endpoint nothing listens on must surface ErrUnavailable, never
	// ErrNotFound.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend, err := NewS3Backend(ctx, Config{
		Type:           TypeS3,
		S3Endpoint:     "http://127.0.0.1:1",
		S3Region:       "us-east-1",
		S3Bucket:       "alert-archive",
		S3AccessKey:    "minioadmin",
		S3SecretKey:    "minioadmin",
		S3UsePathStyle: true,
	})
	require.NoError(t, err)

	_, err = backend.Get(ctx, mustResolve(t, KindAlert, "A1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = backend.HealthCheck(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestS3Backend_HealthCheck_Integration(t *testing.T) {
	backend, _, cleanup := setupMinIO(t)
	defer cleanup()

	assert.NoError(t, backend.HealthCheck(context.Background()))
}
