package object

import (
	"context"
	"io"
)

// ObjectStore stages uploaded files for the lifetime of a single request.
type ObjectStore interface {
	Save(ctx context.Context, namespace string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// Delete removes a staged object. Deleting a missing key is not an error.
	Delete(ctx context.Context, storageKey string) error
}
