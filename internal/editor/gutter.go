package editor

import (
	"strconv"
	"strings"
)

// LineCount returns the number of lines in value: one more than the number
// of newlines, so a trailing newline counts the empty line after it
func LineCount(value string) int {
	return strings.Count(value, "\n") + 1
}

// Gutter returns the line labels "1" through LineCount(value)
func Gutter(value string) []string {
	n := LineCount(value)
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	return labels
}

// GutterColumn renders line numbers in lockstep with a Pane
type GutterColumn struct {
	labels      []string
	offset      int
	unsubscribe func()
}

// NewGutterColumn creates a gutter that follows every offset change of pane
func NewGutterColumn(pane *Pane, value string) *GutterColumn {
	g := &GutterColumn{labels: Gutter(value), offset: pane.Offset()}
	g.unsubscribe = pane.OnScroll(func(offset int) {
		g.offset = offset
	})
	return g
}

// SetValue recomputes the labels for value
func (g *GutterColumn) SetValue(value string) {
	g.labels = Gutter(value)
}

// Labels returns every label
func (g *GutterColumn) Labels() []string { return g.labels }

// Offset returns the first visible line
func (g *GutterColumn) Offset() int { return g.offset }

// Width is the width of the widest label
func (g *GutterColumn) Width() int {
	return len(g.labels[len(g.labels)-1])
}

// Visible returns the right-aligned labels for height lines from the current offset.
// Rows past the last line are blank.
func (g *GutterColumn) Visible(height int) []string {
	width := g.Width()
	rows := make([]string, 0, height)
	for i := g.offset; i < g.offset+height; i++ {
		if i < len(g.labels) {
			rows = append(rows, strings.Repeat(" ", width-len(g.labels[i]))+g.labels[i])
		} else {
			rows = append(rows, strings.Repeat(" ", width))
		}
	}
	return rows
}

// Close stops following the pane
func (g *GutterColumn) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}
