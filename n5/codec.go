package n5

import (
	"encoding/binary"
	"fmt"

	"github.com/voxelio/n5go"
)

// N5 block layout: an uncompressed big-endian header followed by the
// compressed payload. The header is
//
//	uint16 mode            0 = default, 1 = varlength, 2 = object
//	uint16 ndim
//	ndim x uint32 size     stored block extent, fastest-varying first
//	uint32 numElements     mode 1 only
//
// The stored extent may be smaller than the dataset's nominal block size for
// blocks at the array edge. Nothing here is guessed: a header that does not
// parse, a stored extent outside (0, nominal], or a payload whose length
// disagrees with the declared extent is a corrupt block, never zero data.
const (
	blockModeDefault   = 0
	blockModeVarlength = 1
	blockModeObject    = 2
)

type blockCodec struct {
	compression n5go.Compression
}

// NewChunkCodec returns the codec for N5 blocks under the given compression.
func NewChunkCodec(compression n5go.Compression) n5go.Codec {
	return blockCodec{compression: compression}
}

func (c blockCodec) Decode(raw []byte, nominal, _ []int, dtype n5go.DType) (*n5go.DecodedChunk, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: block is %d bytes, header needs at least 4", n5go.ErrCorruptChunk, len(raw))
	}
	mode := binary.BigEndian.Uint16(raw[0:2])
	ndim := int(binary.BigEndian.Uint16(raw[2:4]))

	switch mode {
	case blockModeDefault, blockModeVarlength:
	case blockModeObject:
		return nil, fmt.Errorf("%w: object (mode 2) blocks are unsupported", n5go.ErrCorruptChunk)
	default:
		return nil, fmt.Errorf("%w: unknown block mode %d", n5go.ErrCorruptChunk, mode)
	}
	if ndim != len(nominal) {
		return nil, fmt.Errorf("%w: block declares %d dimensions, dataset has %d", n5go.ErrCorruptChunk, ndim, len(nominal))
	}

	headerLen := 4 + 4*ndim
	if mode == blockModeVarlength {
		headerLen += 4
	}
	if len(raw) < headerLen {
		return nil, fmt.Errorf("%w: block is %d bytes, header needs %d", n5go.ErrCorruptChunk, len(raw), headerLen)
	}

	// Declared extent arrives fastest-varying first; flip to row-major.
	stored := make([]int, ndim)
	elements := 1
	for i := 0; i < ndim; i++ {
		dim := int(binary.BigEndian.Uint32(raw[4+4*i:]))
		if dim < 1 || dim > nominal[ndim-1-i] {
			return nil, fmt.Errorf("%w: stored extent %d outside (0, %d] in block dimension %d",
				n5go.ErrCorruptChunk, dim, nominal[ndim-1-i], i)
		}
		stored[ndim-1-i] = dim
		elements *= dim
	}
	if mode == blockModeVarlength {
		declared := int(binary.BigEndian.Uint32(raw[4+4*ndim:]))
		if declared != elements {
			return nil, fmt.Errorf("%w: varlength count %d != extent product %d", n5go.ErrCorruptChunk, declared, elements)
		}
	}

	data, err := n5go.Decompress(c.compression, raw[headerLen:])
	if err != nil {
		return nil, err
	}
	if err := n5go.CheckPayload(data, stored, dtype.Size); err != nil {
		return nil, err
	}
	return &n5go.DecodedChunk{Shape: stored, Data: data}, nil
}
