package zarr

import (
	"bytes"
	"context"
	"fmt"

	"github.com/voxelio/n5go"
)

// Open opens the Zarr v2 array at a bucket URL (file://, s3://, mem://, ...)
// and returns a region reader over it. The reader owns the bucket; callers
// must Close it.
func Open(ctx context.Context, url string, cfg *n5go.ReaderConfig) (*n5go.Reader, error) {
	store, err := n5go.OpenBlobStore(ctx, url)
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(ctx, store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return reader, nil
}

// NewReader builds a region reader over an already-open chunk store holding
// a Zarr v2 array at its root.
func NewReader(ctx context.Context, store n5go.Store, cfg *n5go.ReaderConfig) (*n5go.Reader, error) {
	raw, err := store.Fetch(ctx, ".zarray")
	if err != nil {
		return nil, fmt.Errorf("failed to read .zarray: %w", err)
	}
	meta, err := LoadMetadata(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	arrayMeta, err := meta.ArrayMetadata()
	if err != nil {
		return nil, err
	}
	compression, err := meta.Compression()
	if err != nil {
		return nil, err
	}
	return n5go.NewReader(arrayMeta, store, NewChunkCodec(compression), Keys(meta.Separator()), cfg)
}
