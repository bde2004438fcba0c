package editor

// Pane tracks the vertical scroll offset of the content area and publishes
// every change to its subscribers
type Pane struct {
	offset int
	height int
	lines  int
	subs   map[int]func(int)
	nextID int
}

// NewPane creates a pane showing height lines
func NewPane(height int) *Pane {
	return &Pane{height: max(1, height), lines: 1, subs: make(map[int]func(int))}
}

// OnScroll registers fn for every offset change and returns its unsubscribe func
func (p *Pane) OnScroll(fn func(offset int)) (unsubscribe func()) {
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() { delete(p.subs, id) }
}

// Offset returns the first visible line
func (p *Pane) Offset() int { return p.offset }

// Height returns the number of visible lines
func (p *Pane) Height() int { return p.height }

// SetHeight resizes the pane
func (p *Pane) SetHeight(height int) {
	p.height = max(1, height)
	p.SetOffset(p.offset)
}

// SetLines updates the content length used to bound the offset
func (p *Pane) SetLines(lines int) {
	p.lines = max(1, lines)
	p.SetOffset(p.offset)
}

// MaxOffset is the largest offset that still fills the pane
func (p *Pane) MaxOffset() int {
	return max(0, p.lines-p.height)
}

// SetOffset scrolls to offset, clamped to the content
func (p *Pane) SetOffset(offset int) {
	offset = min(max(0, offset), p.MaxOffset())
	if offset == p.offset {
		return
	}
	p.offset = offset
	for _, fn := range p.subs {
		fn(offset)
	}
}

// ScrollBy scrolls by delta lines
func (p *Pane) ScrollBy(delta int) {
	p.SetOffset(p.offset + delta)
}

// EnsureVisible scrolls the minimum amount needed to show line
func (p *Pane) EnsureVisible(line int) {
	switch {
	case line < p.offset:
		p.SetOffset(line)
	case line >= p.offset+p.height:
		p.SetOffset(line - p.height + 1)
	}
}
