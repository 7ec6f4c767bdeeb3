package objectstore

import "context"

// WriteToBucket writes data to an object in the given bucket using the store
// for the scheme.
func WriteToBucket(ctx context.Context, scheme, bucket, object string, data []byte, contentType string) error {
	store, err := ForScheme(ctx, scheme)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Write(ctx, bucket, object, data, contentType)
}
