package n5_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/voxelio/n5go"
	"github.com/voxelio/n5go/n5"
)

// makeBlock assembles an N5 block: big-endian header (mode 0) with the
// stored extent fastest-varying first, then the payload.
func makeBlock(dimsFastest []int, payload []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(0))
	binary.Write(&buf, binary.BigEndian, uint16(len(dimsFastest)))
	for _, d := range dimsFastest {
		binary.Write(&buf, binary.BigEndian, uint32(d))
	}
	buf.Write(payload)
	return buf.Bytes()
}

func uint16Payload(values []uint16) []byte {
	buf := make([]byte, len(values)*2)
	for i, v := range values {
		binary.BigEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

func TestLoadAttributes(t *testing.T) {
	doc := `{
		"dimensions": [4, 3],
		"blockSize": [2, 2],
		"dataType": "uint16",
		"compression": {"type": "gzip", "level": -1}
	}`
	attrs, err := n5.LoadAttributes(strings.NewReader(doc))
	require.NoError(t, err)

	comp, err := attrs.Compression()
	require.NoError(t, err)
	require.Equal(t, n5go.CompressionGzip, comp)

	meta, err := attrs.ArrayMetadata()
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, meta.Shape, "dimensions reverse out of N5 axis order")
	require.Equal(t, []int{2, 2}, meta.Chunks)
	require.Equal(t, n5go.DType{Kind: n5go.Uint, Size: 2}, meta.DType)
	require.Equal(t, binary.BigEndian, meta.Order)
	require.Nil(t, meta.Fill)
}

func TestAttributesLegacyCompressionType(t *testing.T) {
	doc := `{
		"dimensions": [8],
		"blockSize": [4],
		"dataType": "float32",
		"compressionType": "raw"
	}`
	attrs, err := n5.LoadAttributes(strings.NewReader(doc))
	require.NoError(t, err)

	comp, err := attrs.Compression()
	require.NoError(t, err)
	require.Equal(t, n5go.CompressionNone, comp)
}

func TestAttributesUnsupportedCompression(t *testing.T) {
	doc := `{
		"dimensions": [8],
		"blockSize": [4],
		"dataType": "float32",
		"compression": {"type": "lz4"}
	}`
	attrs, err := n5.LoadAttributes(strings.NewReader(doc))
	require.NoError(t, err)
	_, err = attrs.Compression()
	require.Error(t, err)
}

func TestParseDataType(t *testing.T) {
	cases := map[string]n5go.DType{
		"uint8":   {Kind: n5go.Uint, Size: 1},
		"uint16":  {Kind: n5go.Uint, Size: 2},
		"uint64":  {Kind: n5go.Uint, Size: 8},
		"int32":   {Kind: n5go.Int, Size: 4},
		"float32": {Kind: n5go.Float, Size: 4},
		"float64": {Kind: n5go.Float, Size: 8},
	}
	for in, want := range cases {
		got, err := n5.ParseDataType(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := n5.ParseDataType("object")
	require.Error(t, err)
}

func TestChunkKeyReversesAxes(t *testing.T) {
	require.Equal(t, "0", n5.ChunkKey(nil))
	require.Equal(t, "7", n5.ChunkKey([]int{7}))
	require.Equal(t, "4/0/1", n5.ChunkKey([]int{1, 0, 4}))
}

func TestBlockCodecDecode(t *testing.T) {
	codec := n5.NewChunkCodec(n5go.CompressionNone)
	dtype := n5go.DType{Kind: n5go.Uint, Size: 2}

	block := makeBlock([]int{2, 2}, uint16Payload([]uint16{1, 2, 3, 4}))
	dc, err := codec.Decode(block, []int{2, 2}, []int{2, 2}, dtype)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, dc.Shape)
	require.Equal(t, uint16Payload([]uint16{1, 2, 3, 4}), dc.Data)

	// Clipped boundary block: stored extent smaller than nominal.
	block = makeBlock([]int{2, 1}, uint16Payload([]uint16{20, 21}))
	dc, err = codec.Decode(block, []int{2, 2}, []int{1, 2}, dtype)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, dc.Shape, "stored extent reverses out of N5 axis order")
}

func TestBlockCodecRejectsCorruptBlocks(t *testing.T) {
	codec := n5.NewChunkCodec(n5go.CompressionNone)
	dtype := n5go.DType{Kind: n5go.Uint, Size: 2}

	cases := map[string][]byte{
		"empty":            {},
		"truncated header": {0, 0, 0},
		"short payload":    makeBlock([]int{2, 2}, uint16Payload([]uint16{1, 2})),
		"oversize extent":  makeBlock([]int{3, 2}, uint16Payload([]uint16{1, 2, 3, 4, 5, 6})),
		"zero extent":      makeBlock([]int{0, 2}, nil),
		"object mode":      {0, 2, 0, 2, 0, 0, 0, 2, 0, 0, 0, 2},
		"rank mismatch":    makeBlock([]int{2}, uint16Payload([]uint16{1, 2})),
	}
	for name, block := range cases {
		_, err := codec.Decode(block, []int{2, 2}, []int{2, 2}, dtype)
		require.ErrorIs(t, err, n5go.ErrCorruptChunk, name)
	}
}

func TestBlockCodecVarlength(t *testing.T) {
	codec := n5.NewChunkCodec(n5go.CompressionNone)
	dtype := n5go.DType{Kind: n5go.Uint, Size: 2}

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(1)) // varlength mode
	binary.Write(&buf, binary.BigEndian, uint16(2))
	binary.Write(&buf, binary.BigEndian, uint32(2))
	binary.Write(&buf, binary.BigEndian, uint32(2))
	binary.Write(&buf, binary.BigEndian, uint32(4)) // element count
	buf.Write(uint16Payload([]uint16{1, 2, 3, 4}))

	dc, err := codec.Decode(buf.Bytes(), []int{2, 2}, []int{2, 2}, dtype)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, dc.Shape)

	// Mismatched element count is corrupt.
	raw := buf.Bytes()
	binary.BigEndian.PutUint32(raw[12:], 5)
	_, err = codec.Decode(raw, []int{2, 2}, []int{2, 2}, dtype)
	require.ErrorIs(t, err, n5go.ErrCorruptChunk)
}

// buildDataset fills a store with a 3x4 uint16 dataset (N5 dimensions
// [4, 3]), 2x2 blocks, value 10*row + column, clipped boundary blocks.
func buildDataset(store *n5go.MemStore, compress func([]byte) []byte) {
	if compress == nil {
		compress = func(b []byte) []byte { return b }
	}
	store.Put("attributes.json", []byte(`{
		"dimensions": [4, 3],
		"blockSize": [2, 2],
		"dataType": "uint16",
		"compression": {"type": "raw"}
	}`))
	put := func(key string, dimsFastest []int, values []uint16) {
		store.Put(key, makeBlock(dimsFastest, compress(uint16Payload(values))))
	}
	put("0/0", []int{2, 2}, []uint16{0, 1, 10, 11})
	put("1/0", []int{2, 2}, []uint16{2, 3, 12, 13})
	put("0/1", []int{2, 1}, []uint16{20, 21})
	put("1/1", []int{2, 1}, []uint16{22, 23})
}

func TestReadFullDataset(t *testing.T) {
	store := n5go.NewMemStore()
	buildDataset(store, nil)

	reader, err := n5.NewReader(context.Background(), store, nil)
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, reader.Metadata().Shape)

	raw, err := reader.ReadFull(context.Background())
	require.NoError(t, err)

	want := []uint16{
		0, 1, 2, 3,
		10, 11, 12, 13,
		20, 21, 22, 23,
	}
	require.Equal(t, uint16Payload(want), raw)
}

func TestReadRegionAcrossBlocks(t *testing.T) {
	store := n5go.NewMemStore()
	buildDataset(store, nil)

	reader, err := n5.NewReader(context.Background(), store, nil)
	require.NoError(t, err)

	raw, _, err := reader.ReadRegion(context.Background(),
		n5go.Region{Start: []int{1, 1}, Stop: []int{3, 3}}, n5go.FailFast)
	require.NoError(t, err)
	require.Equal(t, uint16Payload([]uint16{
		11, 12,
		21, 22,
	}), raw)
}

func TestReadGzipDataset(t *testing.T) {
	store := n5go.NewMemStore()
	buildDataset(store, func(b []byte) []byte {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write(b)
		zw.Close()
		return buf.Bytes()
	})
	store.Put("attributes.json", []byte(`{
		"dimensions": [4, 3],
		"blockSize": [2, 2],
		"dataType": "uint16",
		"compression": {"type": "gzip", "level": -1}
	}`))

	reader, err := n5.NewReader(context.Background(), store, nil)
	require.NoError(t, err)

	raw, err := reader.ReadFull(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint16Payload([]uint16{
		0, 1, 2, 3,
		10, 11, 12, 13,
		20, 21, 22, 23,
	}), raw)
}
