// Package virt computes which items of a large, dynamically sized, ordered
// list should currently be rendered inside a viewport. It tracks per-item
// offsets and sizes (estimated until a host confirms them), maps scroll
// offsets to visible index ranges, re-derives downstream offsets when an
// earlier item's measured size changes (with scroll-anchor correction so the
// viewport does not visibly jump), and translates index-targeting navigation
// into scroll commands.
//
// The package is host-agnostic: rendering, size probing, scroll listening and
// timers are consumed through narrow injected functions. See the tui and
// teaview packages for tcell and bubbletea hosts.
package virt

import (
	"math"
	"time"
)

const (
	// DefaultEstimate is the per-item size assumed before measurement.
	DefaultEstimate = 50.0
	// DefaultOverscan is the number of extra items materialized on each side
	// of the visible range.
	DefaultOverscan = 1
	// DefaultScrollDebounce is the quiet interval after the last scroll event
	// before IsScrolling turns false again.
	DefaultScrollDebounce = 100 * time.Millisecond
)

// Virtualizer is the windowing engine for one viewport binding. It owns the
// measurement list and the scroll state; hosts feed it scroll offsets,
// viewport sizes and confirmed item sizes, and read back the items to render.
//
// All methods must be called from a single goroutine (or otherwise
// serialized); see Scheduler for the timer contract.
type Virtualizer struct {
	count        int
	estimateSize func(index int) float64
	keyFunc      func(index int) any
	overscan     int
	paddingStart float64
	paddingEnd   float64
	horizontal   bool

	sink          func(offset float64)
	extractor     RangeExtractor
	scheduler     Scheduler
	afterSettle   func(fn func())
	debounceDelay time.Duration
	rangeChanged  func(r Range)

	measurer *measurer
	tracker  tracker
	items    []Measurement
	visible  *Range
	attached bool
}

// New returns a virtualizer with an empty list, a constant size estimate of
// [DefaultEstimate], identity keys and an overscan of [DefaultOverscan].
func New() *Virtualizer {
	v := &Virtualizer{
		estimateSize:  func(int) float64 { return DefaultEstimate },
		overscan:      DefaultOverscan,
		extractor:     DefaultRangeExtractor,
		scheduler:     timeScheduler{},
		debounceDelay: DefaultScrollDebounce,
		measurer:      newMeasurer(),
		visible:       &Range{},
		attached:      true,
	}
	v.keyFunc = func(index int) any { return index }
	v.afterSettle = func(fn func()) { v.scheduler.ScheduleAfter(0, fn) }
	return v
}

// SetCount sets the number of items in the list. Shrinking drops trailing
// measurements; growing computes the new suffix from estimates or cached
// sizes. Negative counts clamp to zero.
func (v *Virtualizer) SetCount(count int) *Virtualizer {
	if count < 0 {
		count = 0
	}
	if v.count != count {
		v.measurer.markDirty(min(v.count, count))
		v.count = count
		v.refresh()
	}
	return v
}

// Count returns the current number of items.
func (v *Virtualizer) Count() int {
	return v.count
}

// SetEstimateSize sets the estimator used for items without a confirmed size.
// The estimator may depend only on the index. All measurements are rebuilt.
func (v *Virtualizer) SetEstimateSize(estimate func(index int) float64) *Virtualizer {
	if estimate == nil {
		estimate = func(int) float64 { return DefaultEstimate }
	}
	v.estimateSize = estimate
	v.measurer.markAllDirty()
	v.refresh()
	return v
}

// SetKeyFunc sets the item identity function. Keys must be comparable and
// stable across reorderings for the size cache to stay correct.
func (v *Virtualizer) SetKeyFunc(key func(index int) any) *Virtualizer {
	if key == nil {
		key = func(index int) any { return index }
	}
	v.keyFunc = key
	v.measurer.markAllDirty()
	v.refresh()
	return v
}

// SetOverscan sets how many extra items are materialized beyond each side of
// the visible range.
func (v *Virtualizer) SetOverscan(overscan int) *Virtualizer {
	v.overscan = max(overscan, 0)
	return v
}

// SetPadding sets leading and trailing padding along the scroll axis.
func (v *Virtualizer) SetPadding(start, end float64) *Virtualizer {
	if v.paddingStart != start || v.paddingEnd != end {
		v.paddingStart, v.paddingEnd = start, end
		v.measurer.markAllDirty()
		v.refresh()
	}
	return v
}

// SetHorizontal selects the horizontal axis. The engine's math is
// axis-neutral; hosts use this to pick which extent to probe and which scroll
// key to listen to.
func (v *Virtualizer) SetHorizontal(horizontal bool) *Virtualizer {
	v.horizontal = horizontal
	return v
}

// Horizontal reports whether the horizontal axis is selected.
func (v *Virtualizer) Horizontal() bool {
	return v.horizontal
}

// SetScrollSink sets the function that performs an actual scroll on the host
// surface. Navigation and anchor correction issue offsets through it.
func (v *Virtualizer) SetScrollSink(sink func(offset float64)) *Virtualizer {
	v.sink = sink
	return v
}

// SetRangeExtractor replaces the default overscan-padding extraction policy.
func (v *Virtualizer) SetRangeExtractor(extractor RangeExtractor) *Virtualizer {
	if extractor == nil {
		extractor = DefaultRangeExtractor
	}
	v.extractor = extractor
	return v
}

// SetScheduler replaces the timer capability used for the scrolling debounce
// and the default settle hook.
func (v *Virtualizer) SetScheduler(scheduler Scheduler) *Virtualizer {
	if scheduler != nil {
		v.scheduler = scheduler
	}
	return v
}

// SetAfterSettle sets the hook that defers a function to the host's next
// settle point (post-layout, next frame). ScrollToIndex re-issues itself
// through it. The default defers through the scheduler with zero delay.
func (v *Virtualizer) SetAfterSettle(afterSettle func(fn func())) *Virtualizer {
	if afterSettle == nil {
		afterSettle = func(fn func()) { v.scheduler.ScheduleAfter(0, fn) }
	}
	v.afterSettle = afterSettle
	return v
}

// SetScrollDebounce sets the quiet interval that ends the scrolling state.
func (v *Virtualizer) SetScrollDebounce(d time.Duration) *Virtualizer {
	if d > 0 {
		v.debounceDelay = d
	}
	return v
}

// SetRangeChangedFunc sets a handler invoked whenever the visible range
// actually changes. Ranges are identity-stable: the handler does not fire for
// recomputations that land on the same range.
func (v *Virtualizer) SetRangeChangedFunc(handler func(r Range)) *Virtualizer {
	v.rangeChanged = handler
	return v
}

// SetViewport sets the viewport extent along the scroll axis and recomputes
// the visible range. This is the push point for container size observation.
func (v *Virtualizer) SetViewport(size float64) *Virtualizer {
	if v.tracker.outerSize != size {
		v.tracker.outerSize = max(size, 0)
		v.publishRange()
	}
	return v
}

// Viewport returns the last known viewport extent.
func (v *Virtualizer) Viewport() float64 {
	return v.tracker.outerSize
}

// OnScroll consumes one raw scroll event's offset: it derives the scroll
// direction, opens the scrolling window, restarts the debounce timer, and
// recomputes the visible range synchronously.
func (v *Virtualizer) OnScroll(offset float64) {
	v.tracker.observe(offset)
	v.restartDebounce()
	v.publishRange()
}

// SyncOffset seeds the offset without touching direction or the scrolling
// flag. Use it for the initial state sync and for host echoes of programmatic
// scroll commands.
func (v *Virtualizer) SyncOffset(offset float64) {
	v.tracker.seed(offset)
	v.publishRange()
}

// Offset returns the last known scroll offset.
func (v *Virtualizer) Offset() float64 {
	return v.tracker.offset
}

// ScrollDirection returns the direction of the last scroll event, or
// [DirectionNone] at rest.
func (v *Virtualizer) ScrollDirection() Direction {
	return v.tracker.direction
}

// IsScrolling reports whether the debounce window after the last scroll event
// is still open.
func (v *Virtualizer) IsScrolling() bool {
	return v.tracker.scrolling
}

// ItemMeasured reports a confirmed rendered size for the item at index. A
// size equal to the current one is a no-op. If the item starts above the
// current offset while the viewport is moving backward, the offset is first
// shifted by the size delta through the scroll sink, keeping the visible
// content stationary; only then is the cache updated and the suffix rebuilt.
//
// This is the render-agnostic size probe: call it at most once per distinct
// render of a key, from any rendering backend.
func (v *Virtualizer) ItemMeasured(index int, size float64) {
	if index < 0 || index >= len(v.items) {
		return
	}
	if math.IsNaN(size) || math.IsInf(size, 0) || size < 0 {
		return
	}
	item := v.items[index]
	if item.Size == size {
		return
	}
	if item.Start < v.tracker.offset && v.tracker.direction == DirectionBackward {
		v.commandScroll(v.tracker.offset + size - item.Size)
	}
	v.measurer.confirm(item.Key, size)
	v.measurer.markDirty(index)
	v.refresh()
}

// Measure drops every confirmed size and rebuilds all measurements from the
// estimator. Use it after swapping the estimator or when cached sizes are
// known to be stale wholesale.
func (v *Virtualizer) Measure() {
	clear(v.measurer.cache)
	v.measurer.markAllDirty()
	v.refresh()
}

// Measurements returns the current ordered measurement list. The slice is
// shared with the engine; treat it as read-only.
func (v *Virtualizer) Measurements() []Measurement {
	return v.items
}

// TotalSize returns the current total scrollable extent, including padding.
func (v *Virtualizer) TotalSize() float64 {
	if len(v.items) == 0 {
		return v.paddingStart + v.paddingEnd
	}
	return v.items[len(v.items)-1].End + v.paddingEnd
}

// Range returns the current visible index range.
func (v *Virtualizer) Range() Range {
	return *v.visible
}

// VirtualItem is a Measurement for one extracted index plus the hook to
// report the item's real extent once it has been rendered.
type VirtualItem struct {
	Measurement

	v *Virtualizer
}

// Measured reports the item's rendered extent back to the engine.
func (i VirtualItem) Measured(size float64) {
	i.v.ItemMeasured(i.Index, size)
}

// VirtualItems returns the items to materialize for the current range, in
// ascending index order. Indices outside the list are dropped, so a custom
// extractor cannot produce phantom items.
func (v *Virtualizer) VirtualItems() []VirtualItem {
	indexes := v.extractor(*v.visible, v.overscan, len(v.items))
	items := make([]VirtualItem, 0, len(indexes))
	for _, index := range indexes {
		if index < 0 || index >= len(v.items) {
			continue
		}
		items = append(items, VirtualItem{Measurement: v.items[index], v: v})
	}
	return items
}

// Detach unbinds the viewport: the offset resets to zero, the range collapses,
// and the pending debounce timer is cancelled. A detached virtualizer ignores
// late timer callbacks until Attach is called again.
func (v *Virtualizer) Detach() {
	v.attached = false
	v.tracker.cancelDebounce()
	v.tracker.seed(0)
	v.tracker.settle()
	v.visible = &Range{}
}

// Attach re-binds the viewport after a Detach and recomputes the range from
// the current state.
func (v *Virtualizer) Attach() {
	v.attached = true
	v.publishRange()
}

// refresh rebuilds the dirty measurement suffix and recomputes the range.
func (v *Virtualizer) refresh() {
	v.items = v.measurer.recompute(v.count, v.paddingStart, v.estimateSize, v.keyFunc)
	v.publishRange()
}

// publishRange recomputes the visible range and notifies the handler only
// when the range object actually changed.
func (v *Virtualizer) publishRange() {
	next := calculateRange(v.items, v.tracker.outerSize, v.tracker.offset, v.visible)
	if next == v.visible {
		return
	}
	v.visible = next
	if v.rangeChanged != nil {
		v.rangeChanged(*next)
	}
}

// commandScroll issues an offset through the scroll sink and seeds the local
// state so subsequent math sees it even before the host echoes the event.
func (v *Virtualizer) commandScroll(offset float64) {
	v.tracker.seed(offset)
	if v.sink != nil {
		v.sink(offset)
	}
}

// restartDebounce (re)opens the quiet-interval timer behind IsScrolling.
func (v *Virtualizer) restartDebounce() {
	v.tracker.cancelDebounce()
	v.tracker.debounce = v.scheduler.ScheduleAfter(v.debounceDelay, func() {
		if !v.attached {
			return
		}
		v.tracker.settle()
	})
}
