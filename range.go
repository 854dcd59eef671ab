package virt

import "sort"

// Range is the minimal inclusive index range whose measurements intersect the
// viewport.
type Range struct {
	Start int
	End   int
}

// calculateRange maps a scroll offset and viewport size to the visible index
// range. It returns prev itself when the result is unchanged, so consumers can
// skip downstream work on pointer equality.
//
// Start is the largest index whose Start does not exceed the offset (an exact
// match wins); End is found by a short forward scan, since the viewport spans
// few items relative to the list.
func calculateRange(items []Measurement, outerSize, scrollOffset float64, prev *Range) *Range {
	if len(items) == 0 {
		if prev != nil && *prev == (Range{}) {
			return prev
		}
		return &Range{}
	}

	start := sort.Search(len(items), func(i int) bool {
		return items[i].Start > scrollOffset
	}) - 1
	if start < 0 {
		start = 0
	}

	end := start
	for end < len(items)-1 && items[end].End < scrollOffset+outerSize {
		end++
	}

	if prev != nil && prev.Start == start && prev.End == end {
		return prev
	}
	return &Range{Start: start, End: end}
}

// RangeExtractor expands a visible range into the indices to materialize.
// Output indices must be valid for the count and ascending; duplicates are
// not allowed.
type RangeExtractor func(r Range, overscan, count int) []int

// DefaultRangeExtractor pads the range by overscan on both sides, clamped to
// the list bounds, and returns the contiguous run. An empty list yields no
// indices.
func DefaultRangeExtractor(r Range, overscan, count int) []int {
	if count <= 0 {
		return nil
	}
	start := max(r.Start-overscan, 0)
	end := min(r.End+overscan, count-1)
	if end < start {
		return nil
	}
	indexes := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		indexes = append(indexes, i)
	}
	return indexes
}
