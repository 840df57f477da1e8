package n5go

// chunkOverlap describes how one chunk contributes to a region read: which
// chunk, which chunk-local sub-block, and where that sub-block lands in the
// output array.
type chunkOverlap struct {
	coord      []int // chunk coordinate in the chunk grid
	chunkStart []int // sub-block start in chunk-local indices
	outStart   []int // sub-block start in output-local indices
	size       []int // sub-block extent per dimension
}

// locateChunks maps a validated region to the chunks intersecting it, in
// lexicographic (row-major) coordinate order. Distinct chunks never overlap
// in output space, so the resulting copies are disjoint. A zero-volume
// region yields nil. Pure computation, no I/O.
func locateChunks(meta *ArrayMetadata, region Region) []chunkOverlap {
	if region.Empty() {
		return nil
	}

	rank := meta.Rank()
	first := make([]int, rank)
	last := make([]int, rank) // exclusive
	total := 1
	for i := 0; i < rank; i++ {
		first[i] = region.Start[i] / meta.Chunks[i]
		last[i] = (region.Stop[i]-1)/meta.Chunks[i] + 1
		total *= last[i] - first[i]
	}

	overlaps := make([]chunkOverlap, 0, total)
	coord := make([]int, rank)
	copy(coord, first)
	for {
		overlaps = append(overlaps, overlapAt(meta, region, coord))

		// Odometer increment, least-significant dimension last.
		i := rank - 1
		for ; i >= 0; i-- {
			coord[i]++
			if coord[i] < last[i] {
				break
			}
			coord[i] = first[i]
		}
		if i < 0 {
			break
		}
	}
	return overlaps
}

// overlapAt intersects one chunk with the region. The caller guarantees the
// chunk overlaps the region, so every per-dimension intersection is non-empty.
func overlapAt(meta *ArrayMetadata, region Region, coord []int) chunkOverlap {
	rank := meta.Rank()
	ov := chunkOverlap{
		coord:      append([]int(nil), coord...),
		chunkStart: make([]int, rank),
		outStart:   make([]int, rank),
		size:       make([]int, rank),
	}
	for i := 0; i < rank; i++ {
		chunkGlobalStart := coord[i] * meta.Chunks[i]
		lo := max(region.Start[i], chunkGlobalStart)
		hi := min(region.Stop[i], chunkGlobalStart+meta.Chunks[i])
		ov.chunkStart[i] = lo - chunkGlobalStart
		ov.outStart[i] = lo - region.Start[i]
		ov.size[i] = hi - lo
	}
	return ov
}
