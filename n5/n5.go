package n5

import (
	"bytes"
	"context"
	"fmt"

	"github.com/voxelio/n5go"
)

// Open opens the N5 dataset at a bucket URL (file://, s3://, mem://, ...)
// and returns a region reader over it. The URL must point at the dataset
// directory itself, the one holding attributes.json. The reader owns the
// bucket; callers must Close it.
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
// an N5 dataset at its root.
func NewReader(ctx context.Context, store n5go.Store, cfg *n5go.ReaderConfig) (*n5go.Reader, error) {
	raw, err := store.Fetch(ctx, "attributes.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes.json: %w", err)
	}
	attrs, err := LoadAttributes(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	meta, err := attrs.ArrayMetadata()
	if err != nil {
		return nil, err
	}
	compression, err := attrs.Compression()
	if err != nil {
		return nil, err
	}
	return n5go.NewReader(meta, store, NewChunkCodec(compression), Keys(), cfg)
}
