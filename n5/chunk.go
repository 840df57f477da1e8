package n5

import (
	"strconv"
	"strings"

	"github.com/voxelio/n5go"
)

// ChunkKey encodes a row-major chunk coordinate as an N5 block path:
// slash-separated grid indices in N5 axis order, i.e. reversed.
// Example: coord [z y x] = [1 0 4] -> "4/0/1".
func ChunkKey(coord []int) string {
	if len(coord) == 0 {
		return "0"
	}

	var sb strings.Builder
	for i := len(coord) - 1; i >= 0; i-- {
		if i < len(coord)-1 {
			sb.WriteString("/")
		}
		sb.WriteString(strconv.Itoa(coord[i]))
	}
	return sb.String()
}

// Keys returns the N5 KeyFunc.
func Keys() n5go.KeyFunc {
	return ChunkKey
}
