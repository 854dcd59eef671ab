package virt

import "math"

// Measurement records one item's position and extent along the scroll axis.
// Measurements are ordered by index, start at the leading padding, and tile
// the axis without gaps: each item starts where the previous one ends.
type Measurement struct {
	// Index is the item's position in the list, stable for the current count.
	Index int

	// Key is the caller-supplied identity for the item. Confirmed sizes are
	// cached by key, so they survive reordering and count changes.
	Key any

	// Start and End are offsets along the scroll axis; Size = End - Start.
	Start float64
	End   float64
	Size  float64
}

// measurer owns the ordered measurement list and the cache of confirmed
// sizes. It rebuilds only the suffix invalidated since the last recompute;
// everything below minDirty is kept verbatim.
type measurer struct {
	items []Measurement
	cache map[any]float64

	// minDirty is the lowest index reported dirty since the last recompute.
	minDirty int
}

func newMeasurer() *measurer {
	return &measurer{cache: make(map[any]float64)}
}

// markDirty widens the next recompute to include index and everything after it.
func (m *measurer) markDirty(index int) {
	if index < m.minDirty {
		m.minDirty = max(index, 0)
	}
}

// markAllDirty forces the next recompute to rebuild every measurement.
func (m *measurer) markAllDirty() {
	m.minDirty = 0
}

// confirm stores a measured size for a key. Sizes that are not finite
// non-negative numbers are dropped; the estimator keeps covering that key.
func (m *measurer) confirm(key any, size float64) {
	if math.IsNaN(size) || math.IsInf(size, 0) || size < 0 {
		return
	}
	m.cache[key] = size
}

// sizeFor resolves the size for one index: the cached confirmed size for its
// key if present and valid, else the estimate. Never negative.
func (m *measurer) sizeFor(index int, key any, estimate func(index int) float64) float64 {
	if cached, ok := m.cache[key]; ok && !math.IsNaN(cached) && cached >= 0 {
		return cached
	}
	return max(estimate(index), 0)
}

// recompute rebuilds measurements for indices at and above minDirty and
// returns the full list. Indices below minDirty are untouched; a shrinking
// count truncates, stale cache keys stay behind harmlessly. The dirty window
// is reset afterwards.
func (m *measurer) recompute(count int, paddingStart float64, estimate func(index int) float64, key func(index int) any) []Measurement {
	if count < 0 {
		count = 0
	}
	from := min(m.minDirty, count)

	if count <= cap(m.items) {
		m.items = m.items[:count]
	} else {
		grown := make([]Measurement, count)
		copy(grown, m.items)
		m.items = grown
	}

	start := paddingStart
	if from > 0 {
		start = m.items[from-1].End
	}
	for i := from; i < count; i++ {
		k := key(i)
		size := m.sizeFor(i, k, estimate)
		m.items[i] = Measurement{Index: i, Key: k, Start: start, End: start + size, Size: size}
		start += size
	}

	m.minDirty = count
	return m.items
}
