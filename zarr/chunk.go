package zarr

import (
	"strconv"
	"strings"

	"github.com/voxelio/n5go"
)

// ChunkKey encodes a chunk coordinate as a Zarr v2 store key, joining the
// indices with the dimension separator. 0-d arrays use the single key "0"
// per the Zarr spec.
func ChunkKey(indices []int, separator string) string {
	if len(indices) == 0 {
		return "0"
	}
	if len(indices) == 1 {
		return strconv.Itoa(indices[0])
	}

	var sb strings.Builder
	for i, idx := range indices {
		if i > 0 {
			sb.WriteString(separator)
		}
		sb.WriteString(strconv.Itoa(idx))
	}
	return sb.String()
}

// Keys returns a KeyFunc for the given dimension separator.
func Keys(separator string) n5go.KeyFunc {
	return func(coord []int) string {
		return ChunkKey(coord, separator)
	}
}
