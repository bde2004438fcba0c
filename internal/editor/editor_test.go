package editor

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestLineCount(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "empty", value: "", want: 1},
		{name: "single line", value: "pragma solidity ^0.8.0;", want: 1},
		{name: "two lines", value: "a\nb", want: 2},
		{name: "trailing newline", value: "a\nb\n", want: 3},
		{name: "only newlines", value: "\n\n\n", want: 4},
		{name: "crlf counts newlines", value: "a\r\nb", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LineCount(tt.value); got != tt.want {
				t.Errorf("LineCount(%q) = %d, want %d", tt.value, got, tt.want)
			}
			labels := Gutter(tt.value)
			if len(labels) != tt.want {
				t.Fatalf("Gutter(%q) has %d labels, want %d", tt.value, len(labels), tt.want)
			}
			if labels[0] != "1" || labels[len(labels)-1] != strconv.Itoa(tt.want) {
				t.Errorf("Gutter(%q) = %v", tt.value, labels)
			}
		})
	}
}

func TestBuffer_Indent(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		selStart  int
		selEnd    int
		want      string
		wantCaret int
	}{
		{name: "caret at start", value: "abc", selStart: 0, selEnd: 0, want: "  abc", wantCaret: 2},
		{name: "caret in middle", value: "abc", selStart: 1, selEnd: 1, want: "a  bc", wantCaret: 3},
		{name: "caret at end", value: "abc", selStart: 3, selEnd: 3, want: "abc  ", wantCaret: 5},
		{name: "empty buffer", value: "", selStart: 0, selEnd: 0, want: "  ", wantCaret: 2},
		{name: "selection replaced", value: "function f() {}", selStart: 9, selEnd: 12, want: "function    {}", wantCaret: 11},
		{name: "backwards selection", value: "abcdef", selStart: 4, selEnd: 1, want: "a  ef", wantCaret: 3},
		{name: "whole buffer selected", value: "xyz", selStart: 0, selEnd: 3, want: "  ", wantCaret: 2},
		{name: "multibyte runes", value: "héllo", selStart: 2, selEnd: 2, want: "hé  llo", wantCaret: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(tt.value)
			if tt.selStart == tt.selEnd {
				b.SetCaret(tt.selStart)
			} else {
				b.Select(tt.selStart, tt.selEnd)
			}

			b.Indent()

			if b.Value() != tt.want {
				t.Errorf("Value() = %q, want %q", b.Value(), tt.want)
			}
			if b.Caret() != tt.wantCaret {
				t.Errorf("Caret() = %d, want %d", b.Caret(), tt.wantCaret)
			}
			if _, _, ok := b.Selection(); ok {
				t.Error("selection should collapse after indent")
			}
		})
	}
}

func TestBuffer_Editing(t *testing.T) {
	b := NewBuffer("ab\ncd")
	b.SetCaret(4)

	b.Backspace()
	if b.Value() != "ab\nd" || b.Caret() != 3 {
		t.Errorf("after backspace: %q caret %d", b.Value(), b.Caret())
	}

	b.Delete()
	if b.Value() != "ab\n" {
		t.Errorf("after delete: %q", b.Value())
	}

	b.Vertical(-1, false)
	line, col := b.LineCol()
	if line != 0 || col != 0 {
		t.Errorf("LineCol() = %d,%d, want 0,0", line, col)
	}

	b.End(true)
	if b.SelectedText() != "ab" {
		t.Errorf("SelectedText() = %q", b.SelectedText())
	}

	if got := b.Cut(); got != "ab" || b.Value() != "\n" {
		t.Errorf("Cut() = %q, value %q", got, b.Value())
	}

	if !b.Undo() || b.Value() != "ab\n" {
		t.Errorf("Undo() restored %q", b.Value())
	}
	for b.Undo() {
	}
	if b.Value() != "ab\ncd" {
		t.Errorf("full undo = %q", b.Value())
	}
}

func TestPane_PublishesEveryChange(t *testing.T) {
	pane := NewPane(2)
	pane.SetLines(10)

	var seen []int
	unsubscribe := pane.OnScroll(func(offset int) { seen = append(seen, offset) })

	pane.SetOffset(3)
	pane.ScrollBy(2)
	pane.SetOffset(5) // unchanged, no publish
	pane.SetOffset(100)

	want := []int{3, 5, 8}
	if len(seen) != len(want) {
		t.Fatalf("published %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("published %v, want %v", seen, want)
		}
	}

	unsubscribe()
	pane.SetOffset(0)
	if len(seen) != len(want) {
		t.Error("unsubscribed callback must not run")
	}
}

func TestGutterColumn_FollowsPane(t *testing.T) {
	value := strings.Repeat("line\n", 11)
	pane := NewPane(3)
	pane.SetLines(LineCount(value))
	gutter := NewGutterColumn(pane, value)

	for _, offset := range []int{1, 4, 9, 2} {
		pane.SetOffset(offset)
		if gutter.Offset() != pane.Offset() {
			t.Fatalf("gutter offset %d, pane offset %d", gutter.Offset(), pane.Offset())
		}
	}

	rows := gutter.Visible(3)
	if rows[0] != " 3" || rows[2] != " 5" {
		t.Errorf("Visible() = %q", rows)
	}

	gutter.Close()
	pane.SetOffset(0)
	if gutter.Offset() != 2 {
		t.Error("closed gutter must stop following the pane")
	}
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) ReadAll() (string, error) { return f.text, f.err }
func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func press(m *Model, key tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(key)
	return cmd
}

func TestModel_TabIndentsAndNotifies(t *testing.T) {
	var changes []string
	m := New(WithValue("abc"), WithOnChange(func(v string) { changes = append(changes, v) }))
	m.SetCaret(1)

	if cmd := press(m, tea.KeyMsg{Type: tea.KeyTab}); cmd != nil {
		t.Error("tab must be consumed without producing a command")
	}
	if m.Value() != "a  bc" || m.Caret() != 3 {
		t.Errorf("Value() = %q caret %d", m.Value(), m.Caret())
	}
	if !m.Focused() {
		t.Error("tab must not move focus")
	}
	if len(changes) != 1 || changes[0] != "a  bc" {
		t.Errorf("changes = %q", changes)
	}

	m.SetValue("external")
	if len(changes) != 1 {
		t.Error("SetValue must not run the change callback")
	}
}

func TestModel_NativeKeys(t *testing.T) {
	m := New()
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("uint y;"), Paste: true})
	if m.Value() != "x \nuint y;" {
		t.Fatalf("Value() = %q", m.Value())
	}
	if m.Gutter().Labels()[1] != "2" {
		t.Errorf("gutter not recomputed: %v", m.Gutter().Labels())
	}

	press(m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if m.Value() != "x \n" {
		t.Errorf("undo: %q", m.Value())
	}

	m.Blur()
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	if m.Value() != "x \n" {
		t.Error("blurred editor must ignore keys")
	}
}

func TestModel_Clipboard(t *testing.T) {
	cb := &fakeClipboard{}
	m := New(WithValue("hello world"), WithClipboard(cb))

	m.Select(0, 5)
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c"), Alt: true})
	if cb.text != "hello" || m.Value() != "hello world" {
		t.Errorf("copy: clipboard %q value %q", cb.text, m.Value())
	}

	press(m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if m.Value() != " world" {
		t.Errorf("cut: %q", m.Value())
	}

	m.SetCaret(6)
	press(m, tea.KeyMsg{Type: tea.KeyCtrlV})
	if m.Value() != " worldhello" {
		t.Errorf("paste: %q", m.Value())
	}

	cb.err = errors.New("no clipboard")
	cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlV})
	if cmd == nil {
		t.Fatal("clipboard failure should produce a message")
	}
	if msg, ok := cmd().(ClipboardErrorMsg); !ok || msg.Err == nil {
		t.Errorf("unexpected message %#v", msg)
	}
}

func TestModel_ScrollKeepsGutterInLockstep(t *testing.T) {
	m := New(WithValue(strings.Repeat("x\n", 30)))
	defer m.Close()
	m.SetSize(40, 5)

	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	if m.Pane().Offset() != 2*wheelStep || m.Gutter().Offset() != m.Pane().Offset() {
		t.Errorf("pane %d gutter %d", m.Pane().Offset(), m.Gutter().Offset())
	}

	// moving the caret past the bottom scrolls both
	m.SetCaret(m.buf.Len())
	if m.Pane().Offset() != m.Pane().MaxOffset() || m.Gutter().Offset() != m.Pane().Offset() {
		t.Errorf("pane %d gutter %d max %d", m.Pane().Offset(), m.Gutter().Offset(), m.Pane().MaxOffset())
	}

	view := m.View()
	if strings.Count(view, "\n") != 4 {
		t.Errorf("view should have 5 rows:\n%s", view)
	}
	if !strings.Contains(view, "31") {
		t.Errorf("last line number missing from view:\n%s", view)
	}
}

func TestModel_Placeholder(t *testing.T) {
	m := New(WithPlaceholder("Paste your contract here"))
	m.SetSize(60, 3)
	if !strings.Contains(m.View(), "aste your contract here") {
		t.Errorf("placeholder missing:\n%s", m.View())
	}

	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if strings.Contains(m.View(), "contract here") {
		t.Error("placeholder should disappear once text is entered")
	}
}

func TestModel_ViewExpandsTabs(t *testing.T) {
	m := New(WithValue("\tuint x;\n}"))
	m.Blur()
	m.SetSize(40, 2)

	view := m.View()
	if strings.Contains(view, "\t") {
		t.Fatalf("tab written to the terminal:\n%q", view)
	}
	if !strings.Contains(view, IndentUnit+"uint x;") {
		t.Errorf("tab should render as the indent unit:\n%s", view)
	}
	if m.Value() != "\tuint x;\n}" {
		t.Errorf("rendering must not change the text, got %q", m.Value())
	}

	// the caret stays in view once tabs push the line past the pane
	m = New(WithValue("\t\t\tabcdef"))
	m.SetSize(12, 1)
	m.SetCaret(m.buf.Len())
	row := m.View()
	if !strings.Contains(row, "abcdef") {
		t.Errorf("end of line scrolled out of view: %q", row)
	}
	if w := lipgloss.Width(row); w > 12 {
		t.Errorf("row is %d cells wide, want at most 12: %q", w, row)
	}
}

func TestModel_SelectAllKeyNotIntercepted(t *testing.T) {
	m := New(WithValue("abc"))
	m.SetCaret(1)
	press(m, tea.KeyMsg{Type: tea.KeyCtrlA})
	if _, _, ok := m.Selection(); ok {
		t.Error("ctrl+a must not select")
	}
	if m.Value() != "abc" || m.Caret() != 1 {
		t.Errorf("ctrl+a changed the buffer: %q caret %d", m.Value(), m.Caret())
	}
}
