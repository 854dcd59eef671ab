package tui

import "github.com/gdamore/tcell/v2"

// Thumb geometry runs in 1/8-cell units so the bar moves smoothly on long
// lists.
const subcell = 8

// ScrollBar draws a vertical proportional thumb for the list. Content and
// viewport lengths are in the engine's units (rows).
type ScrollBar struct {
	trackStyle tcell.Style
	thumbStyle tcell.Style

	trackGlyph rune
	thumbLower [8]rune
	thumbUpper [8]rune

	autoHide bool
}

// NewScrollBar returns a scroll bar with a dim track and a standard-unicode
// fractional thumb.
func NewScrollBar() *ScrollBar {
	return &ScrollBar{
		trackStyle: tcell.StyleDefault.Dim(true),
		thumbStyle: tcell.StyleDefault,
		trackGlyph: '│',
		thumbLower: [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'},
		thumbUpper: [8]rune{'▔', '▔', '▀', '▀', '▀', '▀', '█', '█'},
		autoHide:   true,
	}
}

// SetTrackStyle sets the track style.
func (s *ScrollBar) SetTrackStyle(style tcell.Style) *ScrollBar {
	s.trackStyle = style
	return s
}

// SetThumbStyle sets the thumb style.
func (s *ScrollBar) SetThumbStyle(style tcell.Style) *ScrollBar {
	s.thumbStyle = style
	return s
}

// SetAutoHide controls whether the bar disappears when the content fits.
func (s *ScrollBar) SetAutoHide(autoHide bool) *ScrollBar {
	s.autoHide = autoHide
	return s
}

type barMetrics struct {
	trackLen   int
	thumbLen   int
	thumbStart int
}

// computeBarMetrics maps fractional content geometry onto subcell track
// units. The thumb is proportional to viewport/content and never shorter
// than one cell.
func computeBarMetrics(trackCells int, contentLen, viewportLen, offset float64) barMetrics {
	trackLen := trackCells * subcell
	if trackLen == 0 || contentLen <= 0 {
		return barMetrics{}
	}

	viewportLen = min(max(viewportLen, 1), contentLen)
	maxOffset := contentLen - viewportLen
	offset = min(max(offset, 0), maxOffset)

	if maxOffset == 0 {
		return barMetrics{trackLen: trackLen, thumbLen: trackLen}
	}

	thumbLen := min(max(int(float64(trackLen)*viewportLen/contentLen), subcell), trackLen)
	travel := max(trackLen-thumbLen, 0)
	thumbStart := int(float64(travel) * offset / maxOffset)
	return barMetrics{trackLen: trackLen, thumbLen: thumbLen, thumbStart: thumbStart}
}

// cellFill converts absolute subcell thumb coverage into the covered span of
// one track cell.
func cellFill(m barMetrics, cellIndex int) (start, fillLen int) {
	if m.thumbLen == 0 {
		return 0, 0
	}
	cellStart := cellIndex * subcell
	cellEnd := cellStart + subcell
	thumbEnd := m.thumbStart + m.thumbLen
	start = max(m.thumbStart, cellStart)
	end := min(thumbEnd, cellEnd)
	if end <= start {
		return 0, 0
	}
	fillLen = min(end-start, subcell)
	start = min(max(start-cellStart, 0), subcell)
	return start, fillLen
}

func (s *ScrollBar) glyphFor(start, fillLen int) (rune, tcell.Style) {
	if fillLen <= 0 {
		return s.trackGlyph, s.trackStyle
	}
	if fillLen >= subcell {
		return s.thumbLower[7], s.thumbStyle
	}
	if start == 0 {
		return s.thumbUpper[fillLen-1], s.thumbStyle
	}
	return s.thumbLower[fillLen-1], s.thumbStyle
}

// Draw renders the bar in the single column at x, spanning height cells from
// y.
func (s *ScrollBar) Draw(screen tcell.Screen, x, y, height int, contentLen, viewportLen, offset float64) {
	if height <= 0 {
		return
	}
	if s.autoHide && contentLen <= viewportLen {
		return
	}
	m := computeBarMetrics(height, contentLen, viewportLen, offset)
	if m.trackLen == 0 {
		return
	}
	for cell := 0; cell < height; cell++ {
		start, fillLen := cellFill(m, cell)
		glyph, style := s.glyphFor(start, fillLen)
		screen.SetContent(x, y+cell, glyph, nil, style)
	}
}
