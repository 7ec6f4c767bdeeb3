package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

// GCSStore serves gs:// URIs through the Cloud Storage client. The runtime
// service account of the deployed service is used for authentication and
// needs object viewer rights on input buckets and object creator rights on
// the output bucket.
type GCSStore struct {
	client *storage.Client
}

func NewGCSStore(ctx context.Context) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloud Storage client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

func (g *GCSStore) Scheme() string { return "gs" }

func (g *GCSStore) ReadText(ctx context.Context, bucket, object string) (string, error) {
	r, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return "", g.mapError(bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (g *GCSStore) Write(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return g.mapError(bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return g.mapError(bucket, object, err)
	}
	log.Debug().Str("bucket", bucket).Str("object", object).Int("bytes", len(data)).Msg("wrote object to GCS")
	return nil
}

func (g *GCSStore) Exists(ctx context.Context, bucket, object string) (bool, error) {
	_, err := g.client.Bucket(bucket).Object(object).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, g.mapError(bucket, object, err)
	}
	return true, nil
}

func (g *GCSStore) Close() error {
	return g.client.Close()
}

func (g *GCSStore) mapError(bucket, object string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%w: gs://%s/%s", ErrNotFound, bucket, object)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 404:
			return fmt.Errorf("%w: gs://%s/%s", ErrNotFound, bucket, object)
		case 403:
			return fmt.Errorf("%w: gs://%s/%s: check the service account roles on the bucket", ErrPermission, bucket, object)
		}
	}
	return fmt.Errorf("gs://%s/%s: %w", bucket, object, err)
}
