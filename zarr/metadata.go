// Package zarr opens Zarr v2 arrays for reading through the n5go core.
// It parses .zarray metadata, numpy-style dtype strings, and dot-separated
// chunk keys. Chunks are stored at full nominal size even at array edges,
// little-endian, optionally compressed with zlib, gzip, or zstd.
package zarr

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/voxelio/n5go"
)

// CompressorConfig is the Zarr compressor metadata object.
type CompressorConfig struct {
	ID      string `json:"id"`
	Cname   string `json:"cname,omitempty"`
	Clevel  int    `json:"clevel,omitempty"`
	Shuffle int    `json:"shuffle,omitempty"`
}

// Metadata is the Zarr v2 .zarray descriptor.
type Metadata struct {
	ZarrFormat         int               `json:"zarr_format"`
	Shape              []int             `json:"shape"`
	Chunks             []int             `json:"chunks"`
	DType              string            `json:"dtype"`
	Compressor         *CompressorConfig `json:"compressor"`
	FillValue          interface{}       `json:"fill_value"`
	Order              string            `json:"order"`
	DimensionSeparator string            `json:"dimension_separator,omitempty"`
}

// LoadMetadata reads and parses a .zarray document.
func LoadMetadata(reader io.Reader) (*Metadata, error) {
	var meta Metadata
	if err := json.NewDecoder(reader).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if meta.ZarrFormat != 2 {
		return nil, fmt.Errorf("unsupported zarr_format: %d, expected 2", meta.ZarrFormat)
	}
	return &meta, nil
}

// ParseDType maps a numpy-style dtype string like "<f4", "<u2" or "|u1" to
// an element type. Big-endian ('>') dtypes are rejected; '|' (byte-order
// irrelevant) and '<' both read as little-endian.
func ParseDType(s string) (n5go.DType, error) {
	if len(s) < 3 {
		return n5go.DType{}, fmt.Errorf("invalid dtype: %q", s)
	}
	if s[0] == '>' {
		return n5go.DType{}, fmt.Errorf("big-endian dtypes are unsupported: %q", s)
	}
	if s[0] != '<' && s[0] != '|' {
		return n5go.DType{}, fmt.Errorf("invalid byte order in dtype: %q", s)
	}

	size, err := strconv.Atoi(s[2:])
	if err != nil {
		return n5go.DType{}, fmt.Errorf("invalid size in dtype: %q", s)
	}

	var kind n5go.Kind
	switch s[1] {
	case 'b', 'u':
		kind = n5go.Uint
	case 'i':
		kind = n5go.Int
	case 'f':
		kind = n5go.Float
	default:
		return n5go.DType{}, fmt.Errorf("unsupported dtype kind %q in %q", s[1], s)
	}
	return n5go.DType{Kind: kind, Size: size}, nil
}

// Compression maps the compressor object to a payload compression. A nil
// compressor means raw storage.
func (m *Metadata) Compression() (n5go.Compression, error) {
	if m.Compressor == nil {
		return n5go.CompressionNone, nil
	}
	switch m.Compressor.ID {
	case "zlib":
		return n5go.CompressionZlib, nil
	case "gzip":
		return n5go.CompressionGzip, nil
	case "zstd":
		return n5go.CompressionZstd, nil
	default:
		return "", fmt.Errorf("unsupported compressor: %s", m.Compressor.ID)
	}
}

// ArrayMetadata converts the parsed .zarray into the core descriptor.
// Only C (row-major) order is supported.
func (m *Metadata) ArrayMetadata() (*n5go.ArrayMetadata, error) {
	if m.Order != "" && m.Order != "C" {
		return nil, fmt.Errorf("unsupported order: %q, expected C", m.Order)
	}
	dtype, err := ParseDType(m.DType)
	if err != nil {
		return nil, err
	}
	fill, err := n5go.EncodeFillValue(dtype, binary.LittleEndian, m.FillValue)
	if err != nil {
		return nil, fmt.Errorf("invalid fill_value: %w", err)
	}
	meta := &n5go.ArrayMetadata{
		Shape:  m.Shape,
		Chunks: m.Chunks,
		DType:  dtype,
		Order:  binary.LittleEndian,
		Fill:   fill,
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

// Separator returns the chunk-key dimension separator, defaulting to ".".
func (m *Metadata) Separator() string {
	if m.DimensionSeparator == "" {
		return "."
	}
	return m.DimensionSeparator
}
