package n5go

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies how chunk payloads are compressed.
type Compression string

const (
	CompressionNone Compression = "raw"
	CompressionGzip Compression = "gzip"
	CompressionZlib Compression = "zlib"
	CompressionZstd Compression = "zstd"
)

// DecodedChunk is one dense, decompressed block. Shape is the stored block
// extent, which for boundary chunks of stored-clipped formats is smaller than
// the nominal chunk shape. Data holds len(Shape-product) elements row-major
// in the array's byte order. A decoded chunk belongs to the single read that
// produced it and is discarded after its sub-block is copied out.
type DecodedChunk struct {
	Shape []int
	Data  []byte
}

// Codec turns one stored chunk's raw bytes into a DecodedChunk. nominal is
// the array's chunk shape; clipped is that shape truncated at the array edge
// for this particular chunk. A codec must fail with an error wrapping
// ErrCorruptChunk whenever the bytes do not decode to exactly one valid
// block; it must never pad short payloads or guess header layouts.
type Codec interface {
	Decode(raw []byte, nominal, clipped []int, dtype DType) (*DecodedChunk, error)
}

// Decompress expands a chunk payload according to c. Payloads that do not
// decompress cleanly fail with an error wrapping ErrCorruptChunk.
func Decompress(c Compression, raw []byte) ([]byte, error) {
	switch c {
	case CompressionNone, "":
		return raw, nil
	case CompressionGzip:
		if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
			return nil, fmt.Errorf("%w: missing gzip magic", ErrCorruptChunk)
		}
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: bad gzip stream: %v", ErrCorruptChunk, err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip decompress: %v", ErrCorruptChunk, err)
		}
		return out, nil
	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: bad zlib stream: %v", ErrCorruptChunk, err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: zlib decompress: %v", ErrCorruptChunk, err)
		}
		return out, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd decompress: %v", ErrCorruptChunk, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression %q", c)
	}
}

// CheckPayload verifies that data holds exactly one element per grid point of
// shape. Used by the format codecs after decompression.
func CheckPayload(data []byte, shape []int, itemSize int) error {
	want := itemSize
	for _, dim := range shape {
		want *= dim
	}
	if len(data) != want {
		return fmt.Errorf("%w: payload is %d bytes, shape %v with %d-byte elements needs %d",
			ErrCorruptChunk, len(data), shape, itemSize, want)
	}
	return nil
}
