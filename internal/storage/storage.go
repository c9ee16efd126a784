// Package storage persists uploaded resume documents in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store saves an object and returns its public URL.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ErrMissingBucket is returned when no bucket is configured.
var ErrMissingBucket = errors.New("storage bucket is required")

// S3Config configures an S3 or Cloudflare R2 bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // custom endpoint, e.g. https://<account>.r2.cloudflarestorage.com
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from; defaults to Endpoint/Bucket
}

// ConfigFromEnv reads RESUME_BUCKET, RESUME_BUCKET_ENDPOINT, RESUME_BUCKET_PUBLIC_URL,
// AWS_REGION, AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.
func ConfigFromEnv() S3Config {
	return S3Config{
		Bucket:    os.Getenv("RESUME_BUCKET"),
		Region:    os.Getenv("AWS_REGION"),
		Endpoint:  os.Getenv("RESUME_BUCKET_ENDPOINT"),
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		PublicURL: os.Getenv("RESUME_BUCKET_PUBLIC_URL"),
	}
}

func (c *S3Config) normalize() error {
	c.Bucket = strings.TrimSpace(c.Bucket)
	if c.Bucket == "" {
		return ErrMissingBucket
	}
	if c.Region == "" {
		if c.Endpoint != "" {
			c.Region = "auto"
		} else {
			c.Region = "us-east-1"
		}
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	if c.PublicURL == "" {
		if c.Endpoint != "" {
			c.PublicURL = c.Endpoint + "/" + c.Bucket
		} else {
			c.PublicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
		}
	}
	return nil
}

// putObjectAPI is the subset of *s3.Client used by S3Store.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes objects to a single bucket.
type S3Store struct {
	client    putObjectAPI
	bucket    string
	publicURL string
}

// NewS3Store builds a store from explicit configuration. Static credentials
// are used when both keys are set; otherwise the default AWS chain applies.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, cfg), nil
}

func newS3Store(client putObjectAPI, cfg S3Config) *S3Store {
	return &S3Store{client: client, bucket: cfg.Bucket, publicURL: cfg.PublicURL}
}

// NewS3StoreFromEnv returns a nil store and no error when RESUME_BUCKET is unset.
func NewS3StoreFromEnv(ctx context.Context) (*S3Store, error) {
	cfg := ConfigFromEnv()
	if strings.TrimSpace(cfg.Bucket) == "" {
		slog.Debug("resume upload store disabled: RESUME_BUCKET not set")
		return nil, nil
	}
	return NewS3Store(ctx, cfg)
}

// Put uploads data under key and returns the object's public URL.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", errors.New("object key is required")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}
	slog.Info("stored object", slog.String("bucket", s.bucket), slog.String("key", key), slog.Int("bytes", len(data)))
	return s.URL(key), nil
}

// URL returns the public URL of key.
func (s *S3Store) URL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}
