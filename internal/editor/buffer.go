package editor

import (
	"strings"
)

// IndentUnit is inserted by the indent key
const IndentUnit = "  "

const maxUndo = 100

// Buffer is an editable rune buffer with a caret and an optional selection.
// Positions are rune offsets into the value.
type Buffer struct {
	runes  []rune
	caret  int
	anchor int // selection anchor, -1 when nothing is selected
	undo   []snapshot
}

type snapshot struct {
	runes []rune
	caret int
}

// NewBuffer creates a buffer holding value with the caret at the end
func NewBuffer(value string) *Buffer {
	b := &Buffer{anchor: -1}
	b.SetValue(value)
	return b
}

// Value returns the buffer content
func (b *Buffer) Value() string { return string(b.runes) }

// Len returns the number of runes
func (b *Buffer) Len() int { return len(b.runes) }

// SetValue replaces the content without recording undo history.
// The caret moves to the end and the selection is cleared.
func (b *Buffer) SetValue(value string) {
	b.runes = []rune(value)
	b.caret = len(b.runes)
	b.anchor = -1
	b.undo = nil
}

// Caret returns the caret position
func (b *Buffer) Caret() int { return b.caret }

// SetCaret moves the caret and clears the selection
func (b *Buffer) SetCaret(pos int) {
	b.caret = b.clamp(pos)
	b.anchor = -1
}

// Select selects [start, end) and puts the caret at end
func (b *Buffer) Select(start, end int) {
	b.anchor = b.clamp(start)
	b.caret = b.clamp(end)
	if b.anchor == b.caret {
		b.anchor = -1
	}
}

// Selection returns the ordered selection bounds
func (b *Buffer) Selection() (start, end int, ok bool) {
	if b.anchor < 0 || b.anchor == b.caret {
		return b.caret, b.caret, false
	}
	if b.anchor < b.caret {
		return b.anchor, b.caret, true
	}
	return b.caret, b.anchor, true
}

// SelectedText returns the selected text, or ""
func (b *Buffer) SelectedText() string {
	start, end, ok := b.Selection()
	if !ok {
		return ""
	}
	return string(b.runes[start:end])
}

// Insert replaces the selection, or inserts at the caret, and moves the caret past s
func (b *Buffer) Insert(s string) {
	start, end, _ := b.Selection()
	ins := []rune(s)
	if start == end && len(ins) == 0 {
		return
	}
	b.record()

	next := make([]rune, 0, len(b.runes)-(end-start)+len(ins))
	next = append(next, b.runes[:start]...)
	next = append(next, ins...)
	next = append(next, b.runes[end:]...)
	b.runes = next
	b.caret = start + len(ins)
	b.anchor = -1
}

// Indent replaces the selection, or inserts at the caret, with IndentUnit.
// The caret lands just after the inserted spaces.
func (b *Buffer) Indent() {
	b.Insert(IndentUnit)
}

// Backspace deletes the selection or the rune before the caret
func (b *Buffer) Backspace() {
	if _, _, ok := b.Selection(); ok {
		b.Insert("")
		return
	}
	if b.caret == 0 {
		return
	}
	b.Select(b.caret-1, b.caret)
	b.Insert("")
}

// Delete deletes the selection or the rune after the caret
func (b *Buffer) Delete() {
	if _, _, ok := b.Selection(); ok {
		b.Insert("")
		return
	}
	if b.caret >= len(b.runes) {
		return
	}
	b.Select(b.caret, b.caret+1)
	b.Insert("")
}

// Cut removes and returns the selection
func (b *Buffer) Cut() string {
	text := b.SelectedText()
	if text != "" {
		b.Insert("")
	}
	return text
}

// Undo restores the state before the last edit. It reports whether anything changed.
func (b *Buffer) Undo() bool {
	if len(b.undo) == 0 {
		return false
	}
	last := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	b.runes = last.runes
	b.caret = last.caret
	b.anchor = -1
	return true
}

func (b *Buffer) record() {
	saved := make([]rune, len(b.runes))
	copy(saved, b.runes)
	b.undo = append(b.undo, snapshot{runes: saved, caret: b.caret})
	if len(b.undo) > maxUndo {
		b.undo = b.undo[len(b.undo)-maxUndo:]
	}
}

// Move moves the caret to pos. With extend the selection grows from its anchor.
func (b *Buffer) Move(pos int, extend bool) {
	pos = b.clamp(pos)
	if !extend {
		b.caret = pos
		b.anchor = -1
		return
	}
	if b.anchor < 0 {
		b.anchor = b.caret
	}
	b.caret = pos
}

// Left moves one rune back, collapsing a selection to its start
func (b *Buffer) Left(extend bool) {
	if start, _, ok := b.Selection(); ok && !extend {
		b.Move(start, false)
		return
	}
	b.Move(b.caret-1, extend)
}

// Right moves one rune forward, collapsing a selection to its end
func (b *Buffer) Right(extend bool) {
	if _, end, ok := b.Selection(); ok && !extend {
		b.Move(end, false)
		return
	}
	b.Move(b.caret+1, extend)
}

// Vertical moves the caret by delta lines, keeping the column where possible
func (b *Buffer) Vertical(delta int, extend bool) {
	line, col := b.LineCol()
	target := line + delta
	lines := b.lineStarts()
	if target < 0 {
		b.Move(0, extend)
		return
	}
	if target >= len(lines) {
		b.Move(len(b.runes), extend)
		return
	}
	b.Move(min(lines[target]+col, b.lineEnd(target)), extend)
}

// Home moves to the start of the current line
func (b *Buffer) Home(extend bool) {
	line, _ := b.LineCol()
	b.Move(b.lineStarts()[line], extend)
}

// End moves to the end of the current line
func (b *Buffer) End(extend bool) {
	line, _ := b.LineCol()
	b.Move(b.lineEnd(line), extend)
}

// LineCol returns the zero-based line and column of the caret
func (b *Buffer) LineCol() (line, col int) {
	starts := b.lineStarts()
	for i := len(starts) - 1; i >= 0; i-- {
		if starts[i] <= b.caret {
			return i, b.caret - starts[i]
		}
	}
	return 0, b.caret
}

// Lines splits the value on newlines. An empty value has one empty line.
func (b *Buffer) Lines() []string {
	return strings.Split(b.Value(), "\n")
}

func (b *Buffer) lineStarts() []int {
	starts := []int{0}
	for i, r := range b.runes {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (b *Buffer) lineEnd(line int) int {
	starts := b.lineStarts()
	if line+1 < len(starts) {
		return starts[line+1] - 1
	}
	return len(b.runes)
}

func (b *Buffer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.runes) {
		return len(b.runes)
	}
	return pos
}
