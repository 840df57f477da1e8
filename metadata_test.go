package n5go

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayMetadataValidate(t *testing.T) {
	good := testMeta([]int{100, 100}, []int{32, 32})
	require.NoError(t, good.Validate())

	bad := testMeta([]int{100, 100}, []int{32})
	require.Error(t, bad.Validate())

	bad = testMeta([]int{100, 0}, []int{32, 32})
	require.Error(t, bad.Validate())

	bad = testMeta([]int{100}, []int{-1})
	require.Error(t, bad.Validate())

	bad = testMeta([]int{100}, []int{32})
	bad.DType = DType{Kind: Float, Size: 3}
	require.Error(t, bad.Validate())

	bad = testMeta([]int{100}, []int{32})
	bad.Fill = []byte{0}
	require.Error(t, bad.Validate(), "fill width must match dtype width")
}

func TestGridShape(t *testing.T) {
	meta := testMeta([]int{100, 64, 1}, []int{32, 32, 32})
	require.Equal(t, []int{4, 2, 1}, meta.GridShape())
}

func TestClippedChunkShape(t *testing.T) {
	meta := testMeta([]int{100, 100}, []int{32, 32})
	require.Equal(t, []int{32, 32}, meta.ClippedChunkShape([]int{0, 0}))
	require.Equal(t, []int{32, 4}, meta.ClippedChunkShape([]int{1, 3}))
	require.Equal(t, []int{4, 4}, meta.ClippedChunkShape([]int{3, 3}))
}

func TestEncodeFillValue(t *testing.T) {
	fill, err := EncodeFillValue(DType{Kind: Uint, Size: 2}, binary.LittleEndian, float64(500))
	require.NoError(t, err)
	require.Equal(t, []byte{0xf4, 0x01}, fill)

	fill, err = EncodeFillValue(DType{Kind: Int, Size: 4}, binary.BigEndian, float64(-1))
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, fill)

	fill, err = EncodeFillValue(DType{Kind: Float, Size: 4}, binary.LittleEndian, "NaN")
	require.NoError(t, err)
	require.True(t, math.IsNaN(float64(math.Float32frombits(binary.LittleEndian.Uint32(fill)))))

	fill, err = EncodeFillValue(DType{Kind: Float, Size: 8}, binary.LittleEndian, nil)
	require.NoError(t, err)
	require.Nil(t, fill, "nil fill means zero element")

	_, err = EncodeFillValue(DType{Kind: Int, Size: 4}, binary.LittleEndian, "NaN")
	require.Error(t, err, "NaN fill needs a float dtype")

	_, err = EncodeFillValue(DType{Kind: Int, Size: 4}, binary.LittleEndian, "bogus")
	require.Error(t, err)
}
