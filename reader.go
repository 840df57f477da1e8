package n5go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Mode selects how ReadRegion treats chunks that fail to decode.
type Mode int

const (
	// FailFast aborts the whole read on the first corrupt chunk.
	FailFast Mode = iota
	// BestEffort leaves corrupt chunks at the fill value and reports their
	// coordinates alongside the result, so callers can tell "missing" from
	// "undecodable".
	BestEffort
)

// DefaultWorkers bounds concurrent chunk fetches when the config leaves
// Workers unset.
const DefaultWorkers = 4

// ReaderConfig tunes a Reader. The zero value is usable.
type ReaderConfig struct {
	// Workers is the maximum number of chunks fetched and decoded
	// concurrently. Values < 1 fall back to DefaultWorkers.
	Workers int
}

// Reader reads rectangular regions of one chunked array. It is a thin
// orchestrator: the locator enumerates intersecting chunks, the store
// supplies bytes, the codec decodes them, and decoded sub-blocks are copied
// into a fill-value-initialized output buffer. A Reader holds no per-read
// state and is safe for concurrent use.
type Reader struct {
	meta    *ArrayMetadata
	store   Store
	codec   Codec
	key     KeyFunc
	workers int
}

// NewReader builds a Reader from its collaborators. The metadata is
// validated once here and treated as immutable afterwards.
func NewReader(meta *ArrayMetadata, store Store, codec Codec, key KeyFunc, cfg *ReaderConfig) (*Reader, error) {
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid array metadata: %w", err)
	}
	workers := DefaultWorkers
	if cfg != nil && cfg.Workers > 0 {
		workers = cfg.Workers
	}
	return &Reader{meta: meta, store: store, codec: codec, key: key, workers: workers}, nil
}

// Metadata returns the array descriptor.
func (r *Reader) Metadata() *ArrayMetadata { return r.meta }

// Close closes the store if this reader's store owns resources.
func (r *Reader) Close() error {
	if c, ok := r.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ReadRegion reads one half-open region into a dense row-major buffer of the
// array's dtype and byte order. Absent chunks read back as the fill value.
// In BestEffort mode the second result lists the coordinates of chunks that
// were present but undecodable, in lexicographic order; in FailFast mode it
// is always nil and the first corrupt chunk fails the call. Chunks are
// fetched and decoded concurrently; output writes are disjoint by
// construction. If ctx is cancelled mid-read no partial output is returned.
func (r *Reader) ReadRegion(ctx context.Context, region Region, mode Mode) ([]byte, [][]int, error) {
	if err := region.Validate(r.meta.Shape); err != nil {
		return nil, nil, err
	}

	out := newOutput(r.meta, region)
	overlaps := locateChunks(r.meta, region)
	if len(overlaps) == 0 {
		return out, nil, nil
	}
	outShape := region.Shape()

	var mu sync.Mutex
	var corrupt [][]int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, ov := range overlaps {
		g.Go(func() error {
			dc, err := r.fetchChunk(gctx, ov.coord)
			if err != nil {
				if mode == BestEffort && errors.Is(err, ErrCorruptChunk) {
					mu.Lock()
					corrupt = append(corrupt, ov.coord)
					mu.Unlock()
					return nil
				}
				return err
			}
			if dc == nil {
				// Absent chunk, already represented by the fill value.
				return nil
			}
			if err := applyOverlap(out, outShape, ov, dc, r.meta.ItemSize()); err != nil {
				if mode == BestEffort {
					mu.Lock()
					corrupt = append(corrupt, ov.coord)
					mu.Unlock()
					return nil
				}
				return &ChunkError{Coord: ov.coord, Key: r.key(ov.coord), Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(corrupt, func(i, j int) bool { return lexLess(corrupt[i], corrupt[j]) })
	return out, corrupt, nil
}

// ReadFull reads the entire array in FailFast mode.
func (r *Reader) ReadFull(ctx context.Context) ([]byte, error) {
	region := Region{Start: make([]int, r.meta.Rank()), Stop: r.meta.Shape}
	out, _, err := r.ReadRegion(ctx, region, FailFast)
	return out, err
}

// fetchChunk resolves one chunk to a decoded block, or nil if the chunk is
// absent from the store. Errors are annotated with the coordinate and key.
func (r *Reader) fetchChunk(ctx context.Context, coord []int) (*DecodedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := r.key(coord)

	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return nil, &ChunkError{Coord: coord, Key: key, Err: err}
	}
	if !ok {
		return nil, nil
	}

	raw, err := r.store.Fetch(ctx, key)
	if err != nil {
		// Deleted between Exists and Fetch: same as never present.
		if errors.Is(err, ErrChunkAbsent) {
			return nil, nil
		}
		return nil, &ChunkError{Coord: coord, Key: key, Err: err}
	}

	dc, err := r.codec.Decode(raw, r.meta.Chunks, r.meta.ClippedChunkShape(coord), r.meta.DType)
	if err != nil {
		return nil, &ChunkError{Coord: coord, Key: key, Err: err}
	}
	return dc, nil
}

func lexLess(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
