package editor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// gutterSeparator sits between the line numbers and the text
const gutterSeparator = " │ "

// Styles controls how the editor renders
type Styles struct {
	Gutter      lipgloss.Style
	CurrentLine lipgloss.Style
	Text        lipgloss.Style
	Placeholder lipgloss.Style
	Cursor      lipgloss.Style
	Selection   lipgloss.Style
}

// DefaultStyles returns muted line numbers and a reverse-video caret
func DefaultStyles() Styles {
	return Styles{
		Gutter:      lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}),
		CurrentLine: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#3B82F6"}).Bold(true),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}).Italic(true),
		Cursor:      lipgloss.NewStyle().Reverse(true),
		Selection:   lipgloss.NewStyle().Background(lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A8A"}),
	}
}

// View implements tea.Model
func (m *Model) View() string {
	height := m.pane.Height()
	gutterRows := m.gutter.Visible(height)
	contentWidth := max(1, m.width-m.gutter.Width()-len([]rune(gutterSeparator)))
	caretLine, caretCol := m.buf.LineCol()

	content := m.contentRows(height, contentWidth, caretLine, caretCol)

	rows := make([]string, height)
	for i := range rows {
		gutterStyle := m.styles.Gutter
		if m.pane.Offset()+i == caretLine {
			gutterStyle = m.styles.CurrentLine
		}
		rows[i] = gutterStyle.Render(gutterRows[i]) + m.styles.Gutter.Render(gutterSeparator) + content[i]
	}
	return strings.Join(rows, "\n")
}

func (m *Model) contentRows(height, width, caretLine, caretCol int) []string {
	rows := make([]string, height)

	if m.buf.Len() == 0 && m.placeholder != "" {
		placeholder := strings.Split(m.placeholder, "\n")
		for i := range rows {
			if i < len(placeholder) {
				text := placeholder[i]
				if i == 0 && m.focused {
					text = m.styles.Cursor.Render(firstRune(text)) + m.styles.Placeholder.Render(restRunes(text))
				} else {
					text = m.styles.Placeholder.Render(text)
				}
				rows[i] = truncate.String(text, uint(width))
			}
		}
		return rows
	}

	lines := m.buf.Lines()
	starts := m.buf.lineStarts()
	selStart, selEnd, hasSel := m.buf.Selection()

	// scroll horizontally just enough to keep the caret in view
	hoff := 0
	if caretLine < len(lines) {
		hoff = max(0, displayWidth([]rune(lines[caretLine])[:caretCol])-width+1)
	}

	for i := range rows {
		line := m.pane.Offset() + i
		if line >= len(lines) {
			continue
		}
		runes := []rune(lines[line])
		var sb strings.Builder
		cells := 0
		for col := 0; col <= len(runes); col++ {
			pos := starts[line] + col
			isCaret := m.focused && line == caretLine && col == caretCol
			if col == len(runes) {
				if isCaret {
					sb.WriteString(m.styles.Cursor.Render(" "))
				}
				break
			}
			ch := displayRune(runes[col])
			start := cells
			cells += lipgloss.Width(ch)
			if start < hoff {
				continue
			}
			switch {
			case isCaret:
				sb.WriteString(m.styles.Cursor.Render(ch))
			case hasSel && pos >= selStart && pos < selEnd:
				sb.WriteString(m.styles.Selection.Render(ch))
			default:
				sb.WriteString(m.styles.Text.Render(ch))
			}
		}
		rows[i] = truncate.String(sb.String(), uint(width))
	}
	return rows
}

// displayRune renders a tab as the indent unit so the row width stays known
func displayRune(r rune) string {
	if r == '\t' {
		return IndentUnit
	}
	return string(r)
}

func displayWidth(runes []rune) int {
	w := 0
	for _, r := range runes {
		w += lipgloss.Width(displayRune(r))
	}
	return w
}

func firstRune(s string) string {
	if s == "" {
		return " "
	}
	return string([]rune(s)[:1])
}

func restRunes(s string) string {
	r := []rune(s)
	if len(r) <= 1 {
		return ""
	}
	return string(r[1:])
}
