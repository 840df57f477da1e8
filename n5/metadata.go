// Package n5 opens N5 datasets for reading through the n5go core.
//
// N5 metadata lists dimensions fastest-varying first and stores chunk blobs
// under slash-separated grid paths in that same order. This package reverses
// shape, block size, and chunk coordinates at the boundary so the core stays
// row-major throughout. Payloads are big-endian, boundary blocks are stored
// clipped, and each block carries an explicit header (see codec.go).
package n5

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/voxelio/n5go"
)

// CompressionConfig is the N5 compression metadata object.
type CompressionConfig struct {
	Type      string `json:"type"`
	Level     int    `json:"level,omitempty"`
	BlockSize int    `json:"blockSize,omitempty"`
	UseZlib   bool   `json:"useZlib,omitempty"`
}

// Attributes is the attributes.json descriptor of one N5 dataset.
// Dimensions and BlockSize are in N5 axis order, fastest-varying first.
type Attributes struct {
	Dimensions  []int              `json:"dimensions"`
	BlockSize   []int              `json:"blockSize"`
	DataType    string             `json:"dataType"`
	CompressionConfig *CompressionConfig `json:"compression"`

	// CompressionType is the legacy pre-2.0 attribute, a bare string.
	CompressionType string `json:"compressionType,omitempty"`
}

// LoadAttributes reads and parses an attributes.json document.
func LoadAttributes(reader io.Reader) (*Attributes, error) {
	var attrs Attributes
	if err := json.NewDecoder(reader).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}
	if len(attrs.Dimensions) == 0 {
		return nil, fmt.Errorf("attributes have no dimensions; not a dataset")
	}
	return &attrs, nil
}

// ParseDataType maps an N5 dataType string to an element type.
func ParseDataType(s string) (n5go.DType, error) {
	switch s {
	case "uint8":
		return n5go.DType{Kind: n5go.Uint, Size: 1}, nil
	case "uint16":
		return n5go.DType{Kind: n5go.Uint, Size: 2}, nil
	case "uint32":
		return n5go.DType{Kind: n5go.Uint, Size: 4}, nil
	case "uint64":
		return n5go.DType{Kind: n5go.Uint, Size: 8}, nil
	case "int8":
		return n5go.DType{Kind: n5go.Int, Size: 1}, nil
	case "int16":
		return n5go.DType{Kind: n5go.Int, Size: 2}, nil
	case "int32":
		return n5go.DType{Kind: n5go.Int, Size: 4}, nil
	case "int64":
		return n5go.DType{Kind: n5go.Int, Size: 8}, nil
	case "float32":
		return n5go.DType{Kind: n5go.Float, Size: 4}, nil
	case "float64":
		return n5go.DType{Kind: n5go.Float, Size: 8}, nil
	default:
		return n5go.DType{}, fmt.Errorf("unsupported dataType: %q", s)
	}
}

// Compression maps the compression attribute to a payload compression.
func (a *Attributes) Compression() (n5go.Compression, error) {
	name := a.CompressionType
	if a.CompressionConfig != nil {
		name = a.CompressionConfig.Type
	}
	switch name {
	case "", "raw":
		return n5go.CompressionNone, nil
	case "gzip":
		if a.CompressionConfig != nil && a.CompressionConfig.UseZlib {
			return n5go.CompressionZlib, nil
		}
		return n5go.CompressionGzip, nil
	case "zstd":
		return n5go.CompressionZstd, nil
	default:
		return "", fmt.Errorf("unsupported compression: %s", name)
	}
}

// ArrayMetadata converts the attributes into the core row-major descriptor,
// reversing dimensions and blockSize out of N5 axis order. N5 has no fill
// value attribute; absent blocks read as zero.
func (a *Attributes) ArrayMetadata() (*n5go.ArrayMetadata, error) {
	dtype, err := ParseDataType(a.DataType)
	if err != nil {
		return nil, err
	}
	meta := &n5go.ArrayMetadata{
		Shape:  reversed(a.Dimensions),
		Chunks: reversed(a.BlockSize),
		DType:  dtype,
		Order:  binary.BigEndian,
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

func reversed(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
