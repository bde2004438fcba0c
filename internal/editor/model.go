// Package editor is a line-numbered text area for Bubble Tea. The gutter
// follows the content pane's scroll offset, and the tab key inserts two
// spaces instead of moving focus.
package editor

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

const wheelStep = 3

// Clipboard is the system clipboard
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// ClipboardErrorMsg reports a failed copy, cut or paste
type ClipboardErrorMsg struct {
	Err error
}

// Model is the editor widget
type Model struct {
	buf         *Buffer
	pane        *Pane
	gutter      *GutterColumn
	placeholder string
	onChange    func(string)
	clipboard   Clipboard
	styles      Styles
	focused     bool
	width       int
	height      int
}

// Option configures a Model
type Option func(*Model)

// WithValue sets the initial text
func WithValue(value string) Option {
	return func(m *Model) { m.buf.SetValue(value) }
}

// WithPlaceholder sets the text shown while the editor is empty
func WithPlaceholder(text string) Option {
	return func(m *Model) { m.placeholder = text }
}

// WithOnChange registers the change callback. It runs only for user edits.
func WithOnChange(fn func(string)) Option {
	return func(m *Model) { m.onChange = fn }
}

// WithClipboard replaces the system clipboard
func WithClipboard(cb Clipboard) Option {
	return func(m *Model) { m.clipboard = cb }
}

// WithStyles replaces the default styles
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// New creates a focused editor
func New(opts ...Option) *Model {
	m := &Model{
		buf:       NewBuffer(""),
		pane:      NewPane(10),
		clipboard: systemClipboard{},
		styles:    DefaultStyles(),
		focused:   true,
		width:     80,
		height:    10,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.gutter = NewGutterColumn(m.pane, m.buf.Value())
	m.pane.SetLines(LineCount(m.buf.Value()))
	m.buf.SetCaret(0)
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Value returns the current text
func (m *Model) Value() string { return m.buf.Value() }

// SetValue replaces the text from outside the widget. The change callback
// does not run and the caret moves to the start.
func (m *Model) SetValue(value string) {
	if value == m.buf.Value() {
		return
	}
	m.buf.SetValue(value)
	m.buf.SetCaret(0)
	m.refresh()
	m.pane.SetOffset(0)
}

// Caret returns the caret position in runes
func (m *Model) Caret() int { return m.buf.Caret() }

// Selection returns the selected range
func (m *Model) Selection() (start, end int, ok bool) { return m.buf.Selection() }

// Select selects [start, end)
func (m *Model) Select(start, end int) {
	m.buf.Select(start, end)
	m.followCaret()
}

// SetCaret moves the caret
func (m *Model) SetCaret(pos int) {
	m.buf.SetCaret(pos)
	m.followCaret()
}

// Pane returns the content pane
func (m *Model) Pane() *Pane { return m.pane }

// Gutter returns the line-number column
func (m *Model) Gutter() *GutterColumn { return m.gutter }

// Focus gives the editor keyboard input
func (m *Model) Focus() { m.focused = true }

// Blur removes keyboard input
func (m *Model) Blur() { m.focused = false }

// Focused reports whether the editor receives keys
func (m *Model) Focused() bool { return m.focused }

// SetSize sets the outer width and the number of visible lines
func (m *Model) SetSize(width, height int) {
	m.width = max(1, width)
	m.height = max(1, height)
	m.pane.SetHeight(m.height)
	m.followCaret()
}

// Close releases the gutter's scroll subscription
func (m *Model) Close() {
	m.gutter.Close()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m, m.handleKeyPress(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	before := m.buf.Value()
	var cmd tea.Cmd

	switch msg.String() {
	case "tab":
		m.buf.Indent()
	case "enter":
		m.buf.Insert("\n")
	case "backspace":
		m.buf.Backspace()
	case "delete":
		m.buf.Delete()
	case "left", "shift+left":
		m.buf.Left(msg.Type == tea.KeyShiftLeft)
	case "right", "shift+right":
		m.buf.Right(msg.Type == tea.KeyShiftRight)
	case "up", "shift+up":
		m.buf.Vertical(-1, msg.Type == tea.KeyShiftUp)
	case "down", "shift+down":
		m.buf.Vertical(1, msg.Type == tea.KeyShiftDown)
	case "home", "shift+home":
		m.buf.Home(msg.Type == tea.KeyShiftHome)
	case "end", "shift+end":
		m.buf.End(msg.Type == tea.KeyShiftEnd)
	case "pgup":
		m.buf.Vertical(-m.pane.Height(), false)
	case "pgdown":
		m.buf.Vertical(m.pane.Height(), false)
	case "ctrl+z":
		m.buf.Undo()
	case "alt+c":
		cmd = m.copySelection()
	case "ctrl+x":
		if text := m.buf.SelectedText(); text != "" {
			if err := m.clipboard.WriteAll(text); err != nil {
				cmd = clipboardError(err)
			} else {
				m.buf.Cut()
			}
		}
	case "ctrl+v":
		text, err := m.clipboard.ReadAll()
		if err != nil {
			cmd = clipboardError(err)
		} else {
			m.buf.Insert(text)
		}
	default:
		switch msg.Type {
		case tea.KeySpace:
			m.buf.Insert(" ")
		case tea.KeyRunes:
			if !msg.Alt {
				m.buf.Insert(string(msg.Runes))
			}
		}
	}

	if after := m.buf.Value(); after != before {
		m.refresh()
		if m.onChange != nil {
			m.onChange(after)
		}
	}
	m.followCaret()
	return cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.pane.ScrollBy(-wheelStep)
	case tea.MouseButtonWheelDown:
		m.pane.ScrollBy(wheelStep)
	}
}

func (m *Model) copySelection() tea.Cmd {
	text := m.buf.SelectedText()
	if text == "" {
		return nil
	}
	if err := m.clipboard.WriteAll(text); err != nil {
		return clipboardError(err)
	}
	return nil
}

func clipboardError(err error) tea.Cmd {
	return func() tea.Msg { return ClipboardErrorMsg{Err: err} }
}

// refresh recomputes everything derived from the value
func (m *Model) refresh() {
	value := m.buf.Value()
	m.gutter.SetValue(value)
	m.pane.SetLines(LineCount(value))
}

func (m *Model) followCaret() {
	line, _ := m.buf.LineCol()
	m.pane.EnsureVisible(line)
}
