package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// wrapLines splits text into display lines no wider than width, breaking
// between grapheme clusters. Hard newlines are respected. A non-positive
// width returns the paragraphs unwrapped.
func wrapLines(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if width <= 0 || paragraph == "" {
			lines = append(lines, paragraph)
			continue
		}
		var line strings.Builder
		lineWidth := 0
		gr := uniseg.NewGraphemes(paragraph)
		for gr.Next() {
			cluster := gr.Str()
			w := max(uniseg.StringWidth(cluster), 1)
			if lineWidth+w > width && lineWidth > 0 {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}
			line.WriteString(cluster)
			lineWidth += w
		}
		lines = append(lines, line.String())
	}
	return lines
}

// drawLine puts one already-wrapped line at (x, y), clipped to maxWidth, and
// fills the remainder of the cell run with the style's background.
func drawLine(screen tcell.Screen, x, y, maxWidth int, line string, style tcell.Style) {
	col := x
	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		cluster := gr.Str()
		width := max(uniseg.StringWidth(cluster), 1)
		if col+width > x+maxWidth {
			break
		}
		runes := gr.Runes()
		screen.SetContent(col, y, runes[0], runes[1:], style)
		col += width
	}
	for ; col < x+maxWidth; col++ {
		screen.SetContent(col, y, ' ', nil, style)
	}
}
