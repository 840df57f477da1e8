package zarr

import (
	"github.com/voxelio/n5go"
)

// chunkCodec decodes Zarr v2 chunk payloads: no per-chunk header, and every
// chunk, boundary chunks included, is stored at the full nominal chunk
// shape. Any other payload length is corrupt.
type chunkCodec struct {
	compression n5go.Compression
}

// NewChunkCodec returns the codec for Zarr v2 payloads under the given
// compression.
func NewChunkCodec(compression n5go.Compression) n5go.Codec {
	return chunkCodec{compression: compression}
}

func (c chunkCodec) Decode(raw []byte, nominal, _ []int, dtype n5go.DType) (*n5go.DecodedChunk, error) {
	data, err := n5go.Decompress(c.compression, raw)
	if err != nil {
		return nil, err
	}
	if err := n5go.CheckPayload(data, nominal, dtype.Size); err != nil {
		return nil, err
	}
	return &n5go.DecodedChunk{
		Shape: append([]int(nil), nominal...),
		Data:  data,
	}, nil
}
