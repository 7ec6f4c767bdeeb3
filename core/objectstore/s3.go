package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// S3Store serves s3:// URIs. Credentials and region come from the usual AWS
// environment and shared config.
type S3Store struct {
	client *s3.Client
}

func NewS3Store(ctx context.Context) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg)}, nil
}

func (s *S3Store) Scheme() string { return "s3" }

func (s *S3Store) ReadText(ctx context.Context, bucket, object string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
	})
	if err != nil {
		return "", s.mapError(bucket, object, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read s3://%s/%s: %w", bucket, object, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *S3Store) Write(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(object),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return s.mapError(bucket, object, err)
	}
	log.Debug().Str("bucket", bucket).Str("object", object).Int("bytes", len(data)).Msg("wrote object to S3")
	return nil
}

func (s *S3Store) Exists(ctx context.Context, bucket, object string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, s.mapError(bucket, object, err)
	}
	return true, nil
}

func (s *S3Store) Close() error { return nil }

func (s *S3Store) mapError(bucket, object string, err error) error {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &noBucket) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, object)
	}
	if strings.Contains(err.Error(), "AccessDenied") {
		return fmt.Errorf("%w: s3://%s/%s", ErrPermission, bucket, object)
	}
	return fmt.Errorf("s3://%s/%s: %w", bucket, object, err)
}
