// Package s3 implements core.Storage on an S3-compatible object store
// (AWS S3 or MinIO). Each key is one JSON object under an optional prefix.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/aretw0/forge/pkg/core"
)

const contentType = "application/json"

// Config holds explicit construction parameters. Credentials fall back to the
// default AWS chain when AccessKeyID is empty.
type Config struct {
	Bucket          string
	Region          string // default us-east-1
	Endpoint        string // optional; e.g. MinIO
	Prefix          string // optional object key prefix, e.g. "forge/"
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Logger          *slog.Logger
}

// Environment variables:
//   FORGE_S3_BUCKET=<bucket> (required)
//   FORGE_S3_REGION=<region> (default us-east-1)
//   FORGE_S3_ENDPOINT=<url> (optional, for MinIO)
//   FORGE_S3_PREFIX=<prefix> (optional)
//   FORGE_S3_PATH_STYLE=true|false (default false)
//   AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)

// Store implements core.Storage using S3 objects.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// New creates an S3 store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix, cfg.Logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *s3.Client, bucket, prefix string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// ConfigFromEnv reads the FORGE_S3_* variables.
func ConfigFromEnv() Config {
	return Config{
		Bucket:    os.Getenv("FORGE_S3_BUCKET"),
		Region:    os.Getenv("FORGE_S3_REGION"),
		Endpoint:  os.Getenv("FORGE_S3_ENDPOINT"),
		Prefix:    os.Getenv("FORGE_S3_PREFIX"),
		PathStyle: strings.EqualFold(os.Getenv("FORGE_S3_PATH_STYLE"), "true"),
	}
}

// ObjectKey returns the object key that backs key.
func (s *Store) ObjectKey(key string) string {
	return s.prefix + key + ".json"
}

// Get downloads the object backing key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	objKey := s.ObjectKey(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &objKey})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("s3 get %q: %w", key, core.ErrNotFound)
		}
		return "", fmt.Errorf("s3 get %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("s3 get %q: read body: %w", key, err)
	}
	return string(data), nil
}

// Set uploads value as the object backing key, replacing any previous one.
func (s *Store) Set(ctx context.Context, key, value string) error {
	objKey := s.ObjectKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &objKey,
		Body:        strings.NewReader(value),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 set %q: %w", key, err)
	}
	s.logger.Debug("object written", "bucket", s.bucket, "object", objKey, "bytes", len(value))
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	return StoreState{Bucket: s.bucket, Prefix: s.prefix}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string { return "s3-store" }

var _ core.Storage = (*Store)(nil)
