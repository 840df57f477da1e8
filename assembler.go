package n5go

import (
	"bytes"
	"fmt"
)

// strides computes the row-major element strides for a shape.
func strides(shape []int) []int {
	s := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = stride
		stride *= shape[i]
	}
	return s
}

// newOutput allocates the output buffer for a region, every element set to
// the fill value, so chunks skipped as absent leave correctly-typed default
// data. Must complete before any chunk copy begins.
func newOutput(meta *ArrayMetadata, region Region) []byte {
	out := make([]byte, region.NumElements()*meta.ItemSize())
	if meta.Fill != nil && !isZero(meta.Fill) {
		for i := 0; i < len(out); i += meta.ItemSize() {
			copy(out[i:], meta.Fill)
		}
	}
	return out
}

func isZero(b []byte) bool {
	return bytes.Count(b, []byte{0}) == len(b)
}

// applyOverlap copies the overlap's sub-block of a decoded chunk into the
// output buffer. Overlaps from distinct chunks write disjoint output ranges,
// so callers may apply them in any order, including concurrently.
func applyOverlap(out []byte, outShape []int, ov chunkOverlap, dc *DecodedChunk, itemSize int) error {
	if len(dc.Shape) != len(ov.size) {
		return fmt.Errorf("%w: decoded rank %d != array rank %d", ErrCorruptChunk, len(dc.Shape), len(ov.size))
	}
	for i := range dc.Shape {
		if ov.chunkStart[i]+ov.size[i] > dc.Shape[i] {
			return fmt.Errorf("%w: stored shape %v does not cover chunk-local range [%d, %d) in dimension %d",
				ErrCorruptChunk, dc.Shape, ov.chunkStart[i], ov.chunkStart[i]+ov.size[i], i)
		}
	}

	copyBlock(out, strides(outShape), ov.outStart, dc.Data, strides(dc.Shape), ov.chunkStart, ov.size, itemSize)
	return nil
}

// copyBlock copies an N-dimensional sub-block between two row-major buffers.
// The innermost dimension is contiguous in both, so it moves as one copy per
// row.
func copyBlock(dst []byte, dstStrides, dstOffset []int, src []byte, srcStrides, srcOffset []int, size []int, itemSize int) {
	if len(size) == 0 {
		copy(dst[:itemSize], src[:itemSize])
		return
	}

	srcBase := 0
	dstBase := 0
	for i := range size {
		srcBase += srcOffset[i] * srcStrides[i]
		dstBase += dstOffset[i] * dstStrides[i]
	}

	var walk func(dim, srcIdx, dstIdx int)
	walk = func(dim, srcIdx, dstIdx int) {
		if dim == len(size)-1 {
			n := size[dim] * itemSize
			copy(dst[dstIdx*itemSize:dstIdx*itemSize+n], src[srcIdx*itemSize:srcIdx*itemSize+n])
			return
		}
		for i := 0; i < size[dim]; i++ {
			walk(dim+1, srcIdx+i*srcStrides[dim], dstIdx+i*dstStrides[dim])
		}
	}
	walk(0, srcBase, dstBase)
}
