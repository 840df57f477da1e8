package n5go

import (
	"context"
	"fmt"
	"io"
	"sync"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Store is the chunk-byte backend consumed by the Reader. Implementations
// may be a local directory, an object-storage bucket, or anything else that
// maps string keys to blobs. Fetch fails with an error wrapping
// ErrChunkAbsent when the key does not exist and ErrChunkUnavailable on I/O
// failure; the two are deliberately distinct.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// KeyFunc encodes a chunk coordinate as a store key. The encoding is
// format-specific: Zarr v2 joins with dots, N5 with slashes in reversed
// axis order.
type KeyFunc func(coord []int) string

// BlobStore adapts a gocloud.dev bucket to the Store contract. The zero
// retry policy is intentional; callers wanting retries wrap the bucket.
type BlobStore struct {
	bucket *blob.Bucket
	owned  bool
}

// NewBlobStore wraps an already-open bucket. The caller keeps ownership and
// closes the bucket itself.
func NewBlobStore(bucket *blob.Bucket) *BlobStore {
	return &BlobStore{bucket: bucket}
}

// OpenBlobStore opens a bucket URL (file://, s3://, gs://, mem://, ...) and
// returns a store that owns it. Close releases the bucket.
func OpenBlobStore(ctx context.Context, url string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	return &BlobStore{bucket: bucket, owned: true}, nil
}

func (s *BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: stat %s: %v", ErrChunkUnavailable, key, err)
	}
	return ok, nil
}

func (s *BlobStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrChunkAbsent, key)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrChunkUnavailable, key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrChunkUnavailable, key, err)
	}
	return data, nil
}

// Close closes the underlying bucket if this store opened it.
func (s *BlobStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.bucket.Close()
}

// Bucket exposes the underlying bucket, e.g. for reading metadata objects.
func (s *BlobStore) Bucket() *blob.Bucket { return s.bucket }

// MemStore is an in-memory Store for tests and fixtures.
type MemStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string][]byte{}}
}

// Put stores a chunk payload under key, replacing any previous value.
func (s *MemStore) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
}

// Delete removes a key, making the chunk absent.
func (s *MemStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *MemStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok, nil
}

func (s *MemStore) Fetch(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChunkAbsent, key)
	}
	return append([]byte(nil), data...), nil
}
