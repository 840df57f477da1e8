package n5go

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func testMeta(shape, chunks []int) *ArrayMetadata {
	return &ArrayMetadata{
		Shape:  shape,
		Chunks: chunks,
		DType:  DType{Kind: Uint, Size: 2},
		Order:  binary.LittleEndian,
	}
}

func TestLocateChunks_InteriorRegion(t *testing.T) {
	// The canonical scenario: 100^3 array, 32^3 chunks, region [10,50)^3
	// touches exactly the 8 chunks with coordinates in {0,1}^3.
	meta := testMeta([]int{100, 100, 100}, []int{32, 32, 32})
	region := Region{Start: []int{10, 10, 10}, Stop: []int{50, 50, 50}}

	overlaps := locateChunks(meta, region)
	require.Len(t, overlaps, 8)

	var coords [][]int
	for _, ov := range overlaps {
		coords = append(coords, ov.coord)
	}
	require.Equal(t, [][]int{
		{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1},
		{1, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1},
	}, coords, "chunks must enumerate in lexicographic order")

	// Chunk (0,0,0) contributes its [10,32) cube to output [0,22).
	first := overlaps[0]
	require.Equal(t, []int{10, 10, 10}, first.chunkStart)
	require.Equal(t, []int{0, 0, 0}, first.outStart)
	require.Equal(t, []int{22, 22, 22}, first.size)

	// Chunk (1,1,1) contributes its [0,18) cube to output [22,40).
	last := overlaps[7]
	require.Equal(t, []int{0, 0, 0}, last.chunkStart)
	require.Equal(t, []int{22, 22, 22}, last.outStart)
	require.Equal(t, []int{18, 18, 18}, last.size)
}

func TestLocateChunks_SingleChunk(t *testing.T) {
	meta := testMeta([]int{100, 100}, []int{32, 32})
	region := Region{Start: []int{32, 64}, Stop: []int{64, 96}}

	overlaps := locateChunks(meta, region)
	require.Len(t, overlaps, 1)
	require.Equal(t, []int{1, 2}, overlaps[0].coord)
	require.Equal(t, []int{0, 0}, overlaps[0].chunkStart)
	require.Equal(t, []int{32, 32}, overlaps[0].size)
}

func TestLocateChunks_EmptyRegion(t *testing.T) {
	meta := testMeta([]int{100, 100}, []int{32, 32})
	region := Region{Start: []int{10, 50}, Stop: []int{10, 90}}
	require.Empty(t, locateChunks(meta, region))
}

func TestLocateChunks_BoundaryChunk(t *testing.T) {
	// Last chunk of a 100-wide dimension with 32-wide chunks covers [96,100).
	meta := testMeta([]int{100}, []int{32})
	region := Region{Start: []int{90}, Stop: []int{100}}

	overlaps := locateChunks(meta, region)
	require.Len(t, overlaps, 2)
	require.Equal(t, []int{2}, overlaps[0].coord)
	require.Equal(t, []int{26}, overlaps[0].chunkStart)
	require.Equal(t, []int{6}, overlaps[0].size)
	require.Equal(t, []int{3}, overlaps[1].coord)
	require.Equal(t, []int{0}, overlaps[1].chunkStart)
	require.Equal(t, []int{6}, overlaps[1].outStart)
	require.Equal(t, []int{4}, overlaps[1].size)
}

func TestLocateChunks_DisjointOutput(t *testing.T) {
	// Every output element must be claimed by exactly one chunk.
	meta := testMeta([]int{10, 7}, []int{3, 4})
	region := Region{Start: []int{1, 1}, Stop: []int{9, 7}}

	claimed := make([]int, 8*6)
	for _, ov := range locateChunks(meta, region) {
		for i := 0; i < ov.size[0]; i++ {
			for j := 0; j < ov.size[1]; j++ {
				claimed[(ov.outStart[0]+i)*6+ov.outStart[1]+j]++
			}
		}
	}
	for idx, n := range claimed {
		require.Equal(t, 1, n, "output element %d claimed %d times", idx, n)
	}
}

func TestRegionValidate(t *testing.T) {
	shape := []int{100, 100}

	require.NoError(t, Region{Start: []int{0, 0}, Stop: []int{100, 100}}.Validate(shape))
	require.NoError(t, Region{Start: []int{50, 50}, Stop: []int{50, 50}}.Validate(shape))

	cases := []Region{
		{Start: []int{-1, 0}, Stop: []int{10, 10}},
		{Start: []int{0, 0}, Stop: []int{101, 100}},
		{Start: []int{20, 0}, Stop: []int{10, 100}},
		{Start: []int{0}, Stop: []int{10}},
	}
	for _, region := range cases {
		err := region.Validate(shape)
		require.ErrorIs(t, err, ErrInvalidRegion, "region %v", region)
	}
}
