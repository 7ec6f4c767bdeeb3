package objectstore

import (
	"context"
	"fmt"
)

// ReadTextFromURI reads and trims the text object a gs:// or s3:// URI points
// to. An empty object is an error, matching the behavior callers expect from
// a synthesis source.
func ReadTextFromURI(ctx context.Context, uri string) (string, error) {
	store, bucket, object, err := FromURI(ctx, uri)
	if err != nil {
		return "", err
	}
	defer store.Close()

	text, err := store.ReadText(ctx, bucket, object)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("%w: the file at %q is empty", ErrEmptySource, uri)
	}
	return text, nil
}
