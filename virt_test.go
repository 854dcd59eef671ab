package virt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestVirtualizer wires a virtualizer to a tick scheduler and a recording
// scroll sink, so debounce and settle behavior can be stepped deterministically.
func newTestVirtualizer(count int) (*Virtualizer, *TickScheduler, *[]float64) {
	sched := NewTickScheduler(testEpoch)
	var sunk []float64
	v := New().
		SetScheduler(sched).
		SetScrollSink(func(offset float64) { sunk = append(sunk, offset) }).
		SetCount(count).
		SetViewport(500)
	return v, sched, &sunk
}

func TestInitialWindow(t *testing.T) {
	v, _, _ := newTestVirtualizer(1000)

	assert.Equal(t, Range{Start: 0, End: 9}, v.Range())
	assert.Equal(t, 50000.0, v.TotalSize())
	assert.False(t, v.IsScrolling())
	assert.Equal(t, DirectionNone, v.ScrollDirection())

	items := v.VirtualItems()
	require.Len(t, items, 11) // 0..9 visible plus one overscan row below
	assert.Equal(t, 0, items[0].Index)
	assert.Equal(t, 10, items[len(items)-1].Index)
}

func TestEmptyList(t *testing.T) {
	v, _, _ := newTestVirtualizer(0)
	v.SetPadding(4, 6)

	assert.Equal(t, 10.0, v.TotalSize())
	assert.Equal(t, Range{}, v.Range())
	assert.Empty(t, v.VirtualItems())

	// Navigation against an empty list is a silent no-op.
	v.ScrollToIndex(3, AlignStart)
	assert.Equal(t, 0.0, v.Offset())
}

func TestPadding(t *testing.T) {
	v, _, _ := newTestVirtualizer(10)
	v.SetPadding(7, 3)

	items := v.Measurements()
	assert.Equal(t, 7.0, items[0].Start)
	assert.Equal(t, 10*50+7+3.0, v.TotalSize())
}

func TestShrinkTruncatesAndRecomputesTotal(t *testing.T) {
	v, _, _ := newTestVirtualizer(1000)
	v.SetCount(10)

	require.Len(t, v.Measurements(), 10)
	assert.Equal(t, 500.0, v.TotalSize())
}

func TestOnScrollDirectionAndRange(t *testing.T) {
	v, _, _ := newTestVirtualizer(1000)

	v.OnScroll(2025)
	assert.Equal(t, DirectionForward, v.ScrollDirection())
	assert.True(t, v.IsScrolling())
	assert.Equal(t, Range{Start: 40, End: 50}, v.Range())

	v.OnScroll(1500)
	assert.Equal(t, DirectionBackward, v.ScrollDirection())
	assert.Equal(t, Range{Start: 30, End: 39}, v.Range())

	// Equal offsets count as forward.
	v.OnScroll(1500)
	assert.Equal(t, DirectionForward, v.ScrollDirection())
}

func TestSyncOffsetLeavesScrollStateAlone(t *testing.T) {
	v, _, _ := newTestVirtualizer(1000)

	v.SyncOffset(2025)
	assert.Equal(t, 2025.0, v.Offset())
	assert.Equal(t, DirectionNone, v.ScrollDirection())
	assert.False(t, v.IsScrolling())
	assert.Equal(t, Range{Start: 40, End: 50}, v.Range())
}

func TestScrollDebounce(t *testing.T) {
	v, sched, _ := newTestVirtualizer(1000)

	v.OnScroll(100)
	require.True(t, v.IsScrolling())

	// Still inside the quiet interval: nothing settles.
	sched.Advance(testEpoch.Add(50 * time.Millisecond))
	assert.True(t, v.IsScrolling())

	// A second event restarts the interval; the first timer must not fire.
	v.OnScroll(200)
	sched.Advance(testEpoch.Add(120 * time.Millisecond))
	assert.True(t, v.IsScrolling())

	sched.Advance(testEpoch.Add(151 * time.Millisecond))
	assert.False(t, v.IsScrolling())
	assert.Equal(t, DirectionNone, v.ScrollDirection())
	// The offset survives settling.
	assert.Equal(t, 200.0, v.Offset())
}

func TestDetach(t *testing.T) {
	v, sched, _ := newTestVirtualizer(1000)
	v.OnScroll(2025)

	v.Detach()
	assert.Equal(t, 0.0, v.Offset())
	assert.Equal(t, Range{}, v.Range())
	assert.False(t, v.IsScrolling())

	// The pending debounce timer was cancelled; advancing fires nothing.
	sched.Advance(testEpoch.Add(time.Second))
	assert.False(t, sched.Pending())

	v.Attach()
	assert.Equal(t, Range{Start: 0, End: 9}, v.Range())
}

// leakyScheduler ignores Stop, standing in for a host timer that already
// fired when the cancellation raced it.
type leakyScheduler struct {
	fns []func()
}

type leakyTimer struct{}

func (leakyTimer) Stop() {}

func (s *leakyScheduler) ScheduleAfter(d time.Duration, fn func()) Timer {
	s.fns = append(s.fns, fn)
	return leakyTimer{}
}

func TestStaleDebounceAfterDetachIsSuppressed(t *testing.T) {
	sched := &leakyScheduler{}
	v := New().SetScheduler(sched).SetCount(100).SetViewport(500)

	v.OnScroll(100)
	v.Detach()
	require.Len(t, sched.fns, 1)

	// The callback outlived the binding; the liveness check swallows it.
	sched.fns[0]()
	assert.False(t, v.IsScrolling())
	assert.Equal(t, 0.0, v.Offset())
}

func TestAnchorCorrection(t *testing.T) {
	v, _, sunk := newTestVirtualizer(1000)

	// Scroll forward, then backward to offset 300.
	v.OnScroll(350)
	v.OnScroll(300)
	require.Equal(t, DirectionBackward, v.ScrollDirection())

	// The sink must observe the shifted offset before the cache update
	// becomes visible through the measurements.
	var totalAtSink float64
	v.SetScrollSink(func(offset float64) {
		*sunk = append(*sunk, offset)
		totalAtSink = v.TotalSize()
	})

	// Item 5 spans [250,300): above the viewport. Confirming 80 instead of
	// the estimated 50 shifts the offset by exactly the delta.
	v.ItemMeasured(5, 80)

	require.Equal(t, []float64{330}, *sunk)
	assert.Equal(t, 50000.0, totalAtSink)
	assert.Equal(t, 330.0, v.Offset())
	assert.Equal(t, 50030.0, v.TotalSize())
	assert.Equal(t, 80.0, v.Measurements()[5].Size)
}

func TestNoAnchorCorrection(t *testing.T) {
	t.Run("forward direction", func(t *testing.T) {
		v, _, sunk := newTestVirtualizer(1000)
		v.OnScroll(300)
		require.Equal(t, DirectionForward, v.ScrollDirection())

		v.ItemMeasured(5, 80)
		assert.Empty(t, *sunk)
		assert.Equal(t, 300.0, v.Offset())
		assert.Equal(t, 80.0, v.Measurements()[5].Size)
	})

	t.Run("item below the viewport", func(t *testing.T) {
		v, _, sunk := newTestVirtualizer(1000)
		v.OnScroll(350)
		v.OnScroll(300)

		v.ItemMeasured(100, 80)
		assert.Empty(t, *sunk)
		assert.Equal(t, 300.0, v.Offset())
	})

	t.Run("unchanged size", func(t *testing.T) {
		v, _, sunk := newTestVirtualizer(1000)
		v.OnScroll(350)
		v.OnScroll(300)

		v.ItemMeasured(5, 50)
		assert.Empty(t, *sunk)
		assert.Equal(t, 50.0, v.Measurements()[5].Size)
	})
}

func TestItemMeasuredIgnoresBadInput(t *testing.T) {
	v, _, _ := newTestVirtualizer(10)

	v.ItemMeasured(-1, 80)
	v.ItemMeasured(10, 80)
	v.ItemMeasured(3, -5)
	assert.Equal(t, 500.0, v.TotalSize())
}

func TestItemMeasuredPreservesPrefix(t *testing.T) {
	v, _, _ := newTestVirtualizer(100)
	before := v.Measurements()

	v.ItemMeasured(5, 80)
	after := v.Measurements()

	// Suffix-only invalidation: the clean prefix occupies the same backing
	// array elements with the same values.
	assert.Same(t, &before[0], &after[0])
	for i := 0; i < 5; i++ {
		assert.Equal(t, before[i], after[i])
	}
	assert.Equal(t, 330.0, after[6].Start)
}

func TestMeasureDropsConfirmedSizes(t *testing.T) {
	v, _, _ := newTestVirtualizer(10)
	v.ItemMeasured(0, 80)
	require.Equal(t, 530.0, v.TotalSize())

	v.Measure()
	assert.Equal(t, 500.0, v.TotalSize())
	assert.Equal(t, 50.0, v.Measurements()[0].Size)
}

func TestKeyedCacheSurvivesCountChange(t *testing.T) {
	v, _, _ := newTestVirtualizer(10)
	v.SetKeyFunc(func(index int) any { return "row-" + string(rune('a'+index)) })

	v.ItemMeasured(9, 75)
	v.SetCount(5)
	v.SetCount(10)

	// The key still resolves, so the confirmed size is picked up again.
	assert.Equal(t, 75.0, v.Measurements()[9].Size)
}

func TestRangeChangedIsIdentityStable(t *testing.T) {
	v, _, _ := newTestVirtualizer(1000)
	var fired []Range
	v.SetRangeChangedFunc(func(r Range) { fired = append(fired, r) })

	v.OnScroll(10)
	require.Len(t, fired, 1)
	assert.Equal(t, Range{Start: 0, End: 10}, fired[0])

	// A different offset landing on the same range stays silent.
	v.OnScroll(20)
	assert.Len(t, fired, 1)

	v.OnScroll(75)
	require.Len(t, fired, 2)
	assert.Equal(t, Range{Start: 1, End: 11}, fired[1])

	// A measurement that does not move the range stays silent too.
	v.ItemMeasured(500, 80)
	assert.Len(t, fired, 2)
}

func TestCustomRangeExtractor(t *testing.T) {
	v, _, _ := newTestVirtualizer(100)
	v.SetRangeExtractor(func(r Range, overscan, count int) []int {
		// Sticky first row plus the visible run.
		indexes := []int{0}
		for i := max(r.Start, 1); i <= min(r.End, count-1); i++ {
			indexes = append(indexes, i)
		}
		return indexes
	})
	v.OnScroll(2025)

	items := v.VirtualItems()
	require.NotEmpty(t, items)
	assert.Equal(t, 0, items[0].Index)
	assert.Equal(t, 40, items[1].Index)
}

func TestVirtualItemMeasuredHook(t *testing.T) {
	v, _, _ := newTestVirtualizer(100)

	items := v.VirtualItems()
	items[2].Measured(90)
	assert.Equal(t, 90.0, v.Measurements()[2].Size)
}
