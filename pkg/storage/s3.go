package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/astronomy-commons/alertdb/pkg/storage")

// archivePrefix is prepended to every resolved key inside object-store
// backends. Versioning the prefix lets the archive layout change without
// touching the caller-visible addressing contract.
const archivePrefix = "alert_archive/v1"

// S3Backend serves the archive from an S3-compatible object store: AWS S3,
// Ceph RGW, or MinIO for local development.
type S3Backend struct {
	client *s3.Client
	bucket string
}

// NewS3Backend creates an S3-backed Backend. Static credentials are used when
// both access and secret keys are set; otherwise the default credential chain
// applies (IAM roles, env vars, shared config). A non-empty endpoint enables
// path-style addressing automatically via cfg.S3UsePathStyle for
// MinIO-compatible stores.
func NewS3Backend(ctx context.Context, cfg Config) (*S3Backend, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		if cfg.S3UsePathStyle {
			o.UsePathStyle = true
		}
	})

	return &S3Backend{client: client, bucket: cfg.S3Bucket}, nil
}

// Get fetches the object at key from the configured bucket. "No such key"
// maps to ErrNotFound; auth failures, network errors, and throttling map to
// ErrUnavailable. No retry happens here.
func (b *S3Backend) Get(ctx context.Context, key string) ([]byte, error) {
	objectKey := b.objectKey(key)

	ctx, span := tracer.Start(ctx, "S3Backend.Get",
		trace.WithAttributes(
			attribute.String("s3.bucket", b.bucket),
			attribute.String("s3.key", objectKey),
		),
	)
	defer span.End()

	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isS3NotFound(err) {
			span.SetStatus(codes.Ok, "object absent")
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "s3 get failed")
		return nil, fmt.Errorf("%w: s3 get %s: %v", ErrUnavailable, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "s3 body read failed")
		return nil, fmt.Errorf("%w: s3 read %s: %v", ErrUnavailable, key, err)
	}

	span.SetAttributes(attribute.Int("payload.size", len(data)))
	span.SetStatus(codes.Ok, "object retrieved")
	return data, nil
}

// Exists checks object presence with a HEAD request.
func (b *S3Backend) Exists(ctx context.Context, key string) (bool, error) {
	objectKey := b.objectKey(key)

	ctx, span := tracer.Start(ctx, "S3Backend.Exists",
		trace.WithAttributes(
			attribute.String("s3.bucket", b.bucket),
			attribute.String("s3.key", objectKey),
		),
	)
	defer span.End()

	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "s3 head failed")
		return false, fmt.Errorf("%w: s3 head %s: %v", ErrUnavailable, key, err)
	}
	return true, nil
}

// HealthCheck verifies bucket reachability.
func (b *S3Backend) HealthCheck(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err != nil {
		return fmt.Errorf("%w: s3 head bucket %s: %v", ErrUnavailable, b.bucket, err)
	}
	return nil
}

func (b *S3Backend) objectKey(key string) string {
	return archivePrefix + "/" + key
}

// isS3NotFound reports whether the SDK error means "no object at this key",
// as opposed to a failure reaching or authenticating with the store. GetObject
// surfaces *types.NoSuchKey; HeadObject surfaces a generic 404 whose code is
// "NotFound".
func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
