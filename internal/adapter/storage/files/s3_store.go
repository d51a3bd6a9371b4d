package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	appconfig "eseva-portal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of the S3 client used by S3DocumentStore.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3DocumentStore implements ports.DocumentStore on any S3-compatible bucket.
// Object keys mirror the local layout ({dir}/{name}) so public paths stay
// /uploads/{dir}/{name} regardless of backend.
type S3DocumentStore struct {
	client s3API
	bucket string
}

// NewS3DocumentStore builds an S3 client from cfg.
func NewS3DocumentStore(ctx context.Context, cfg appconfig.S3Config) (*S3DocumentStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "ap-south-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3DocumentStore(client, cfg.Bucket), nil
}

func newS3DocumentStore(client s3API, bucket string) *S3DocumentStore {
	return &S3DocumentStore{client: client, bucket: bucket}
}

// Promote uploads the staged file to {dir}/{name} and removes the local copy.
func (s *S3DocumentStore) Promote(ctx context.Context, tempPath, dir string) (string, error) {
	if !safeSegment.MatchString(dir) {
		return "", ErrUnsafePath
	}
	f, err := os.Open(tempPath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	name := filepath.Base(tempPath)
	if err := s.put(ctx, path.Join(dir, name), f); err != nil {
		return "", err
	}
	_ = os.Remove(tempPath)
	return publicPath(dir, name), nil
}

// Save uploads r to {dir}/{filename}.
func (s *S3DocumentStore) Save(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	if !safeSegment.MatchString(dir) {
		return "", ErrUnsafePath
	}
	name := path.Base(filepath.ToSlash(filename))
	if name == "." || name == "/" {
		return "", ErrUnsafePath
	}
	if err := s.put(ctx, path.Join(dir, name), r); err != nil {
		return "", err
	}
	return publicPath(dir, name), nil
}

// Remove deletes the object behind a public path.
func (s *S3DocumentStore) Remove(ctx context.Context, public string) error {
	key, err := relativeFromPublic(public)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (s *S3DocumentStore) put(ctx context.Context, key string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
