// Package storage uploads exported reports to S3-compatible object storage
// (AWS S3 or MinIO) and hands back a time-limited download link.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}
	presignGetObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, ttl time.Duration) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignGetObject(ctx, in, s3.WithPresignExpires(ttl))
	}
)

// S3Config holds connection settings. An empty Bucket disables uploads.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	LinkTTL   time.Duration
}

func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// S3Store puts objects into one bucket.
type S3Store struct {
	cfg    S3Config
	client *s3.Client
}

// NewS3Store builds the SDK client with static credentials. With an
// Endpoint set (MinIO) path-style addressing is used.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3: bucket is not configured")
	}
	if cfg.LinkTTL <= 0 {
		cfg.LinkTTL = 15 * time.Minute
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{cfg: cfg, client: client}, nil
}

// Upload stores body under key and returns a presigned GET URL for it.
func (s *S3Store) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3: put %s: %w", key, err)
	}

	req, err := presignGetObject(s.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s.cfg.LinkTTL)
	if err != nil {
		return "", fmt.Errorf("s3: presign %s: %w", key, err)
	}
	return req.URL, nil
}
