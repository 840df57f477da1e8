package n5go

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Dataset iterates an array in batches along dimension 0, materializing each
// batch through the region reader and returning it as a tensor. Useful for
// feeding stored volumes into gomlx pipelines without loading the whole
// array.
type Dataset struct {
	reader       *Reader
	CurrentIndex int
}

// NewDataset wraps a reader for batch iteration. The array must have at
// least one dimension and a float32, int32, or int64 dtype.
func NewDataset(reader *Reader) (*Dataset, error) {
	meta := reader.Metadata()
	if meta.Rank() == 0 {
		return nil, fmt.Errorf("cannot batch a 0-dimensional array")
	}
	switch meta.DType {
	case DType{Float, 4}, DType{Int, 4}, DType{Int, 8}:
	default:
		return nil, fmt.Errorf("unsupported batch dtype: %s", meta.DType)
	}
	return &Dataset{reader: reader}, nil
}

// Reset rewinds iteration to the first batch.
func (d *Dataset) Reset() { d.CurrentIndex = 0 }

// NextBatch reads the next batch of up to batchSize rows along dimension 0.
// Returns io.EOF when the array is exhausted.
func (d *Dataset) NextBatch(ctx context.Context, batchSize int) (*tensors.Tensor, error) {
	meta := d.reader.Metadata()
	if d.CurrentIndex >= meta.Shape[0] {
		return nil, io.EOF
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	start := d.CurrentIndex
	end := start + batchSize
	if end > meta.Shape[0] {
		end = meta.Shape[0]
	}

	regionStart := make([]int, meta.Rank())
	regionStart[0] = start
	regionStop := append([]int(nil), meta.Shape...)
	regionStop[0] = end

	raw, _, err := d.reader.ReadRegion(ctx, Region{Start: regionStart, Stop: regionStop}, FailFast)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch [%d, %d): %w", start, end, err)
	}
	d.CurrentIndex = end

	batchShape := append([]int(nil), meta.Shape...)
	batchShape[0] = end - start

	switch meta.DType {
	case DType{Float, 4}:
		data := make([]float32, len(raw)/4)
		for i := range data {
			data[i] = math.Float32frombits(meta.Order.Uint32(raw[i*4:]))
		}
		return tensors.FromFlatDataAndDimensions(data, batchShape...), nil
	case DType{Int, 4}:
		data := make([]int32, len(raw)/4)
		for i := range data {
			data[i] = int32(meta.Order.Uint32(raw[i*4:]))
		}
		return tensors.FromFlatDataAndDimensions(data, batchShape...), nil
	case DType{Int, 8}:
		data := make([]int64, len(raw)/8)
		for i := range data {
			data[i] = int64(meta.Order.Uint64(raw[i*8:]))
		}
		return tensors.FromFlatDataAndDimensions(data, batchShape...), nil
	default:
		return nil, fmt.Errorf("unsupported batch dtype: %s", meta.DType)
	}
}
