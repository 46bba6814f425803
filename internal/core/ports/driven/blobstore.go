package driven

import "context"

// BlobStore holds generation-format chunk text in object storage,
// keyed by domain.GenerationBlobKey. This is an optional service -
// when nil, search results omit generation text.
type BlobStore interface {
	// Put stores a blob under the given key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves a blob. Returns domain.ErrNotFound for missing keys.
	Get(ctx context.Context, key string) ([]byte, error)

	// DeletePrefix removes every blob whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
