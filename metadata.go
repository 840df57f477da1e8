// Package n5go reads rectangular regions out of chunked, compressed
// N-dimensional arrays stored as one blob per chunk, the layout shared by the
// N5 and Zarr v2 formats. The core is format-agnostic: a Store supplies chunk
// bytes by key, a Codec turns them into dense blocks, and the Reader stitches
// the blocks covering a requested region into one row-major output buffer.
// The n5 and zarr subpackages supply the format-specific metadata parsing,
// chunk-key encoding, and codecs.
package n5go

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind is the element category of a fixed-width numeric dtype.
type Kind byte

const (
	Uint Kind = iota
	Int
	Float
)

func (k Kind) String() string {
	switch k {
	case Uint:
		return "uint"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// DType is a fixed-width numeric element type: signed or unsigned integers of
// 1-8 bytes, or float32/float64.
type DType struct {
	Kind Kind
	Size int // bytes per element
}

func (d DType) String() string {
	return fmt.Sprintf("%s%d", d.Kind, d.Size*8)
}

func (d DType) validate() error {
	switch d.Kind {
	case Uint, Int:
		switch d.Size {
		case 1, 2, 4, 8:
			return nil
		}
	case Float:
		switch d.Size {
		case 4, 8:
			return nil
		}
	}
	return fmt.Errorf("unsupported dtype %s", d)
}

// ArrayMetadata is the immutable descriptor of a stored array. It is built
// once per array handle by a format front-end and treated as read-only.
type ArrayMetadata struct {
	Shape  []int // global extent per dimension, row-major
	Chunks []int // nominal chunk extent per dimension, same rank as Shape
	DType  DType
	Order  binary.ByteOrder // byte order of stored elements

	// Fill is one encoded element substituted for absent chunks.
	// nil means a zero element.
	Fill []byte
}

// Validate checks the §3-style structural invariants: equal rank, positive
// extents, a supported dtype, and a fill value of element width.
func (m *ArrayMetadata) Validate() error {
	if len(m.Shape) != len(m.Chunks) {
		return fmt.Errorf("shape rank %d != chunk rank %d", len(m.Shape), len(m.Chunks))
	}
	for i := range m.Shape {
		if m.Shape[i] <= 0 {
			return fmt.Errorf("shape[%d] = %d, must be positive", i, m.Shape[i])
		}
		if m.Chunks[i] <= 0 {
			return fmt.Errorf("chunks[%d] = %d, must be positive", i, m.Chunks[i])
		}
	}
	if err := m.DType.validate(); err != nil {
		return err
	}
	if m.Order == nil {
		return fmt.Errorf("byte order not set")
	}
	if m.Fill != nil && len(m.Fill) != m.DType.Size {
		return fmt.Errorf("fill value is %d bytes, dtype %s needs %d", len(m.Fill), m.DType, m.DType.Size)
	}
	return nil
}

// Rank returns the number of dimensions.
func (m *ArrayMetadata) Rank() int { return len(m.Shape) }

// ItemSize returns the bytes per element.
func (m *ArrayMetadata) ItemSize() int { return m.DType.Size }

// GridShape returns the chunk-grid extent per dimension,
// ceil(shape[i]/chunks[i]).
func (m *ArrayMetadata) GridShape() []int {
	grid := make([]int, len(m.Shape))
	for i := range m.Shape {
		grid[i] = (m.Shape[i] + m.Chunks[i] - 1) / m.Chunks[i]
	}
	return grid
}

// NumElements returns the total element count of the array.
func (m *ArrayMetadata) NumElements() int {
	n := 1
	for _, dim := range m.Shape {
		n *= dim
	}
	return n
}

// ClippedChunkShape returns the extent of the chunk at coord truncated at the
// array edge. Interior chunks return the nominal chunk shape.
func (m *ArrayMetadata) ClippedChunkShape(coord []int) []int {
	clipped := make([]int, len(m.Shape))
	for i := range m.Shape {
		end := (coord[i] + 1) * m.Chunks[i]
		if end > m.Shape[i] {
			end = m.Shape[i]
		}
		clipped[i] = end - coord[i]*m.Chunks[i]
	}
	return clipped
}

// EncodeFillValue encodes a numeric fill value as one element of the given
// dtype and byte order. v may be nil (zero element), a float64 (as produced
// by JSON decoding), an int64, or one of the strings "NaN", "Infinity",
// "-Infinity" used by Zarr for non-finite float fills.
func EncodeFillValue(d DType, order binary.ByteOrder, v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		switch x {
		case "NaN":
			f = math.NaN()
		case "Infinity":
			f = math.Inf(1)
		case "-Infinity":
			f = math.Inf(-1)
		default:
			return nil, fmt.Errorf("unsupported fill value %q", x)
		}
		if d.Kind != Float {
			return nil, fmt.Errorf("fill value %q requires a float dtype, have %s", x, d)
		}
	default:
		return nil, fmt.Errorf("unsupported fill value type %T", v)
	}

	buf := make([]byte, d.Size)
	switch d.Kind {
	case Float:
		switch d.Size {
		case 4:
			order.PutUint32(buf, math.Float32bits(float32(f)))
		case 8:
			order.PutUint64(buf, math.Float64bits(f))
		}
	case Uint, Int:
		// Two's complement covers the signed case.
		u := uint64(int64(f))
		switch d.Size {
		case 1:
			buf[0] = byte(u)
		case 2:
			order.PutUint16(buf, uint16(u))
		case 4:
			order.PutUint32(buf, uint32(u))
		case 8:
			order.PutUint64(buf, u)
		}
	}
	return buf, nil
}
