// Package s3store implements imagestudio.Storage on S3 and S3-compatible
// object stores (R2, MinIO).
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mhpenta/imagestudio"
)

// ErrNoBucket is returned when no bucket is configured.
var ErrNoBucket = errors.New("s3store: bucket is required")

// PutObjectAPI is the subset of *s3.Client used by Store.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config describes the bucket and how objects are addressed.
type Config struct {
	Bucket string
	Region string

	// Endpoint overrides the S3 endpoint for compatible stores. When set,
	// path-style addressing is used.
	Endpoint string

	// PublicURL is the base of returned object URLs, e.g. a CDN domain.
	PublicURL string

	// Static credentials; empty means the default credential chain.
	AccessKeyID     string
	SecretAccessKey string
}

// Store uploads images to one bucket.
type Store struct {
	client PutObjectAPI
	cfg    Config
}

var _ imagestudio.Storage = (*Store)(nil)

// New loads the AWS configuration and creates a Store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Store using an existing client.
func NewWithClient(client PutObjectAPI, cfg Config) *Store {
	return &Store{client: client, cfg: cfg}
}

// SaveFile uploads data under key and returns its URL.
func (s *Store) SaveFile(ctx context.Context, data []byte, key string, contentType string) (string, error) {
	if s.cfg.Bucket == "" {
		return "", ErrNoBucket
	}
	if contentType == "" {
		contentType = imagestudio.DefaultMIMEType
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return s.URL(key), nil
}

// URL returns the address of key. PublicURL wins; then a path-style URL on
// the custom endpoint; then the virtual-hosted AWS URL.
func (s *Store) URL(key string) string {
	switch {
	case s.cfg.PublicURL != "":
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.PublicURL, "/"), key)
	case s.cfg.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	default:
		region := s.cfg.Region
		if region == "" {
			region = "us-east-1"
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, region, key)
	}
}
