package virt

// Direction indicates which way the last scroll event moved the viewport
// along the scroll axis.
type Direction int

const (
	// DirectionNone is the direction at rest, before the first event and
	// after the scrolling debounce settles.
	DirectionNone Direction = iota
	// DirectionForward is movement toward larger offsets.
	DirectionForward
	// DirectionBackward is movement toward smaller offsets.
	DirectionBackward
)

// tracker is the single owner of the scroll state: the last known offset and
// viewport extent, the derived direction, and the debounced scrolling flag.
// All writes happen through the virtualizer's event entry points.
type tracker struct {
	offset    float64
	direction Direction
	scrolling bool
	outerSize float64

	debounce Timer
}

// observe records a real scroll event. Direction compares against the
// previous offset; an equal offset counts as forward.
func (t *tracker) observe(offset float64) {
	if offset >= t.offset {
		t.direction = DirectionForward
	} else {
		t.direction = DirectionBackward
	}
	t.offset = offset
	t.scrolling = true
}

// seed updates the offset without deriving direction or opening the
// scrolling window. Used for the initial sync and for programmatic scroll
// commands.
func (t *tracker) seed(offset float64) {
	t.offset = offset
}

// settle closes the scrolling window: the debounce quiet interval elapsed
// with no further events.
func (t *tracker) settle() {
	t.scrolling = false
	t.direction = DirectionNone
}

func (t *tracker) cancelDebounce() {
	if t.debounce != nil {
		t.debounce.Stop()
		t.debounce = nil
	}
}
