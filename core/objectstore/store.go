package objectstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidURI  = errors.New("invalid object store URI")
	ErrNotFound    = errors.New("object not found")
	ErrPermission  = errors.New("permission denied")
	ErrEmptySource = errors.New("empty source object")
)

// Store reads and writes objects in a bucket-addressed object store.
type Store interface {
	ReadText(ctx context.Context, bucket, object string) (string, error)
	Write(ctx context.Context, bucket, object string, data []byte, contentType string) error
	Exists(ctx context.Context, bucket, object string) (bool, error)
	Scheme() string
	Close() error
}

var uriRegexp = regexp.MustCompile(`^(gs|s3)://([^/]+)/(.+)$`)

// ParseURI splits an object store URI into scheme, bucket and object name.
func ParseURI(uri string) (scheme, bucket, object string, err error) {
	m := uriRegexp.FindStringSubmatch(uri)
	if m == nil {
		return "", "", "", fmt.Errorf("%w: %q, expected gs://bucket/object or s3://bucket/object", ErrInvalidURI, uri)
	}
	return m[1], m[2], m[3], nil
}

// FromURI returns a store able to serve the given URI, along with the parsed
// bucket and object name.
func FromURI(ctx context.Context, uri string) (Store, string, string, error) {
	scheme, bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, "", "", err
	}
	store, err := ForScheme(ctx, scheme)
	if err != nil {
		return nil, "", "", err
	}
	return store, bucket, object, nil
}

// ForScheme builds a store for the given URI scheme.
func ForScheme(ctx context.Context, scheme string) (Store, error) {
	switch strings.ToLower(scheme) {
	case "gs":
		return NewGCSStore(ctx)
	case "s3":
		return NewS3Store(ctx)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURI, scheme)
	}
}

// URI renders a bucket and object name back into an URI for the scheme.
func URI(scheme, bucket, object string) string {
	return fmt.Sprintf("%s://%s/%s", scheme, bucket, object)
}
