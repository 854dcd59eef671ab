// Package tui draws virtualized lists directly onto a tcell screen. It is a
// thin host around the virt engine: wheel and key events feed scroll offsets
// in, the extracted range drives drawing, and real wrapped line counts flow
// back as confirmed item sizes.
package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/ayn2op/virt"
)

// Render returns the text for one list index when laid out at width.
type Render func(index, width int) string

// List is a virtualized text list. Item heights start from an estimate and
// are confirmed from real wrapped line counts as items are drawn, so a list
// of thousands of items lays out instantly and refines as it scrolls.
type List struct {
	x, y, width, height int

	render Render
	engine *virt.Virtualizer

	style         tcell.Style
	selectedStyle tcell.Style
	selected      int

	bar     *ScrollBar
	showBar bool

	changed func(index int)

	// settle holds engine callbacks deferred to the next draw, the list's
	// post-layout settle point.
	settle []func()
}

// NewList returns an empty list estimating one line per item.
func NewList() *List {
	l := &List{
		render:        nil,
		engine:        virt.New().SetEstimateSize(func(int) float64 { return 1 }),
		style:         tcell.StyleDefault,
		selectedStyle: tcell.StyleDefault.Reverse(true),
		selected:      -1,
		bar:           NewScrollBar(),
		showBar:       true,
	}
	l.engine.SetAfterSettle(func(fn func()) { l.settle = append(l.settle, fn) })
	return l
}

// SetRect sets the list's screen rectangle.
func (l *List) SetRect(x, y, width, height int) *List {
	l.x, l.y, l.width, l.height = x, y, width, height
	return l
}

// SetSource sets the item count and the render callback.
func (l *List) SetSource(count int, render Render) *List {
	l.render = render
	l.engine.SetCount(count)
	if l.selected >= count {
		l.selected = count - 1
	}
	return l
}

// SetEstimateLines sets the line count assumed for items that have not been
// drawn yet.
func (l *List) SetEstimateLines(lines int) *List {
	lines = max(lines, 1)
	l.engine.SetEstimateSize(func(int) float64 { return float64(lines) })
	return l
}

// SetStyle sets the default item style.
func (l *List) SetStyle(style tcell.Style) *List {
	l.style = style
	return l
}

// SetSelectedStyle sets the style of the selected item.
func (l *List) SetSelectedStyle(style tcell.Style) *List {
	l.selectedStyle = style
	return l
}

// SetScrollBar toggles the scroll bar column.
func (l *List) SetScrollBar(show bool) *List {
	l.showBar = show
	return l
}

// SetChangedFunc sets a handler called when the selection changes.
func (l *List) SetChangedFunc(handler func(index int)) *List {
	l.changed = handler
	return l
}

// Engine exposes the underlying virtualizer for advanced configuration
// (overscan, padding, custom extraction).
func (l *List) Engine() *virt.Virtualizer {
	return l.engine
}

// Selected returns the selected index, or -1.
func (l *List) Selected() int {
	return l.selected
}

// Select moves the selection, clamped to the list, and scrolls just far
// enough to reveal it.
func (l *List) Select(index int) *List {
	count := l.engine.Count()
	if count == 0 {
		return l
	}
	index = min(max(index, 0), count-1)
	if index != l.selected {
		l.selected = index
		l.engine.ScrollToIndex(index, virt.AlignAuto)
		if l.changed != nil {
			l.changed(index)
		}
	}
	return l
}

// textWidth returns the columns available to item text.
func (l *List) textWidth() int {
	if l.showBar {
		return l.width - 1
	}
	return l.width
}

// maxOffset is the largest offset that still fills the viewport.
func (l *List) maxOffset() float64 {
	return max(l.engine.TotalSize()-float64(l.height), 0)
}

// scrollBy feeds a relative scroll event into the engine, clamped to the
// scrollable extent.
func (l *List) scrollBy(lines int) {
	offset := min(max(l.engine.Offset()+float64(lines), 0), l.maxOffset())
	l.engine.OnScroll(offset)
}

// HandleKey processes a key event and reports whether it was consumed.
func (l *List) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		l.Select(l.selected - 1)
	case tcell.KeyDown:
		l.Select(l.selected + 1)
	case tcell.KeyPgUp:
		l.scrollBy(-max(l.height, 1))
	case tcell.KeyPgDn:
		l.scrollBy(max(l.height, 1))
	case tcell.KeyHome:
		l.engine.ScrollToIndex(0, virt.AlignStart)
	case tcell.KeyEnd:
		l.engine.ScrollToIndex(l.engine.Count()-1, virt.AlignEnd)
	default:
		return false
	}
	return true
}

// HandleMouse processes a mouse event and reports whether it was consumed.
func (l *List) HandleMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	if x < l.x || x >= l.x+l.width || y < l.y || y >= l.y+l.height {
		return false
	}
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		l.scrollBy(-3)
	case ev.Buttons()&tcell.WheelDown != 0:
		l.scrollBy(3)
	case ev.Buttons()&tcell.Button1 != 0:
		if index := l.indexAtRow(y - l.y); index >= 0 {
			l.Select(index)
		}
	default:
		return false
	}
	return true
}

// indexAtRow maps a viewport row to the item drawn there, or -1.
func (l *List) indexAtRow(row int) int {
	target := l.engine.Offset() + float64(row)
	for _, item := range l.engine.VirtualItems() {
		if target >= item.Start && target < item.End {
			return item.Index
		}
	}
	return -1
}

// Draw draws the list onto the screen.
func (l *List) Draw(screen tcell.Screen) {
	if l.width <= 0 || l.height <= 0 || l.render == nil {
		return
	}
	width := l.textWidth()
	if width <= 0 {
		return
	}
	l.engine.SetViewport(float64(l.height))

	// First pass: confirm real wrapped heights. This may shift offsets
	// (anchor correction included), so the items are fetched again below.
	wrapped := make(map[int][]string)
	for _, item := range l.engine.VirtualItems() {
		lines := wrapLines(l.render(item.Index, width), width)
		wrapped[item.Index] = lines
		item.Measured(float64(len(lines)))
	}

	// Layout has settled: run deferred engine callbacks (navigation retries)
	// against the refreshed measurements.
	for len(l.settle) > 0 {
		pending := l.settle
		l.settle = nil
		for _, fn := range pending {
			fn()
		}
	}

	// Clear the rectangle so rows vacated by shrinking items don't linger.
	for y := l.y; y < l.y+l.height; y++ {
		for x := l.x; x < l.x+l.width; x++ {
			screen.SetContent(x, y, ' ', nil, l.style)
		}
	}

	offset := l.engine.Offset()
	for _, item := range l.engine.VirtualItems() {
		lines, ok := wrapped[item.Index]
		if !ok {
			lines = wrapLines(l.render(item.Index, width), width)
		}
		style := l.style
		if item.Index == l.selected {
			style = l.selectedStyle
		}
		top := l.y + int(item.Start-offset)
		for i, line := range lines {
			row := top + i
			if row < l.y || row >= l.y+l.height {
				continue
			}
			drawLine(screen, l.x, row, width, line, style)
		}
	}

	if l.showBar {
		l.bar.Draw(screen, l.x+l.width-1, l.y, l.height, l.engine.TotalSize(), float64(l.height), offset)
	}
}
