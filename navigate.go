package virt

// Align selects where a navigation target lands inside the viewport.
type Align int

const (
	// AlignStart places the target at the leading edge of the viewport.
	AlignStart Align = iota
	// AlignCenter centers the target in the viewport.
	AlignCenter
	// AlignEnd places the target at the trailing edge of the viewport.
	AlignEnd
	// AlignAuto picks the nearest edge, or leaves an already fully visible
	// target alone.
	AlignAuto
)

// ScrollToOffset issues a scroll command that brings targetOffset to the
// aligned position in the viewport. AlignAuto resolves to start for targets
// at or above the current offset, end for targets at or below the far edge,
// and falls back to start otherwise.
func (v *Virtualizer) ScrollToOffset(targetOffset float64, align Align) {
	if align == AlignAuto {
		switch {
		case targetOffset <= v.tracker.offset:
			align = AlignStart
		case targetOffset >= v.tracker.offset+v.tracker.outerSize:
			align = AlignEnd
		default:
			align = AlignStart
		}
	}

	offset := targetOffset
	switch align {
	case AlignEnd:
		offset = targetOffset - v.tracker.outerSize
	case AlignCenter:
		offset = targetOffset - v.tracker.outerSize/2
	}

	v.commandScroll(offset)
	v.publishRange()
}

// ScrollToIndex issues a scroll command that brings the item at index into
// the aligned position. The index is clamped to the list; an empty list is a
// no-op. Because item sizes may only become accurate after the item has been
// rendered, the command is issued twice: once now and once after the host's
// next settle point, with identical arguments, correcting for any offset
// drift between estimated and measured sizes.
func (v *Virtualizer) ScrollToIndex(index int, align Align) {
	v.scrollToIndex(index, align)
	v.afterSettle(func() {
		if !v.attached {
			return
		}
		v.scrollToIndex(index, align)
	})
}

func (v *Virtualizer) scrollToIndex(index int, align Align) {
	if len(v.items) == 0 {
		return
	}
	index = min(max(index, 0), len(v.items)-1)
	item := v.items[index]

	if align == AlignAuto {
		switch {
		case item.End >= v.tracker.offset+v.tracker.outerSize:
			align = AlignEnd
		case item.Start <= v.tracker.offset:
			align = AlignStart
		default:
			// Already fully visible.
			return
		}
	}

	var target float64
	switch align {
	case AlignEnd:
		target = item.End
	case AlignCenter:
		target = item.Start + item.Size/2
	default:
		target = item.Start
	}

	v.ScrollToOffset(target, align)
}
