package n5go

import "fmt"

// Region is a half-open hyper-rectangular read window [Start[i], Stop[i]) in
// global array-index coordinates.
type Region struct {
	Start []int
	Stop  []int
}

// NewRegion builds a region from a start corner and a per-dimension extent,
// the start/count convention used by slice-download tooling.
func NewRegion(start, shape []int) Region {
	stop := make([]int, len(start))
	for i := range start {
		stop[i] = start[i] + shape[i]
	}
	return Region{Start: start, Stop: stop}
}

// Shape returns the per-dimension extent Stop - Start.
func (r Region) Shape() []int {
	shape := make([]int, len(r.Start))
	for i := range r.Start {
		shape[i] = r.Stop[i] - r.Start[i]
	}
	return shape
}

// NumElements returns the element count of the region, zero if any dimension
// is empty.
func (r Region) NumElements() int {
	n := 1
	for i := range r.Start {
		n *= r.Stop[i] - r.Start[i]
	}
	return n
}

// Empty reports whether the region has zero volume.
func (r Region) Empty() bool {
	for i := range r.Start {
		if r.Stop[i] <= r.Start[i] {
			return true
		}
	}
	return false
}

func (r Region) String() string {
	return fmt.Sprintf("[%v, %v)", r.Start, r.Stop)
}

// Validate checks the region against an array shape: matching rank and
// 0 <= start <= stop <= shape per dimension. Zero-volume regions are legal.
func (r Region) Validate(shape []int) error {
	if len(r.Start) != len(shape) || len(r.Stop) != len(shape) {
		return fmt.Errorf("%w: region rank %d/%d != array rank %d",
			ErrInvalidRegion, len(r.Start), len(r.Stop), len(shape))
	}
	for i := range shape {
		if r.Start[i] < 0 || r.Start[i] > r.Stop[i] || r.Stop[i] > shape[i] {
			return fmt.Errorf("%w: dimension %d: [%d, %d) outside [0, %d]",
				ErrInvalidRegion, i, r.Start[i], r.Stop[i], shape[i])
		}
	}
	return nil
}
