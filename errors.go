package n5go

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRegion indicates a malformed read request (rank mismatch,
	// negative index, or bounds outside the array shape).
	ErrInvalidRegion = errors.New("invalid region")

	// ErrChunkAbsent indicates a chunk key that does not exist in the store.
	// Absent chunks are legal sparse data and are represented by the fill
	// value; this error never escapes ReadRegion.
	ErrChunkAbsent = errors.New("chunk absent")

	// ErrChunkUnavailable indicates a store I/O failure, distinct from the
	// chunk simply not existing. Retry policy belongs to the store.
	ErrChunkUnavailable = errors.New("chunk unavailable")

	// ErrCorruptChunk indicates chunk bytes that could not be decoded
	// against the declared or nominal shape. Corrupt chunks are never
	// silently read back as fill-value data in FailFast mode.
	ErrCorruptChunk = errors.New("corrupt chunk")
)

// ChunkError annotates a store or codec failure with the chunk it concerns.
type ChunkError struct {
	Coord []int
	Key   string
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %v (key %q): %v", e.Coord, e.Key, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }
