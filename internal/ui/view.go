package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/yildizm/ContractLens/internal/emoji"
	"github.com/yildizm/ContractLens/internal/session"
)

const (
	headerHeight    = 1
	inputsHeight    = 2
	footerHeight    = 2
	panelChrome     = 2 // top and bottom border
	minEditorHeight = 3
	minResultHeight = 3
)

// layout sizes every component from the window size
func (a *App) layout() {
	width := max(20, a.width)
	inner := width - 4 // border and padding

	resultsHeight := max(minResultHeight, a.height/3)
	editorHeight := a.height - headerHeight - inputsHeight - footerHeight - resultsHeight - 2*panelChrome
	editorHeight = max(minEditorHeight, editorHeight)

	a.editor.SetSize(inner, editorHeight)
	a.pathInput.Width = max(10, width-lipgloss.Width(a.pathInput.Prompt)-2)
	a.urlInput.Width = max(10, width-lipgloss.Width(a.urlInput.Prompt)-2)
	a.results.Width = inner
	a.results.Height = resultsHeight
	a.refreshResults()
}

// View renders the app
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	if !a.ready {
		loading := StyledText("Initializing ContractLens...", a.styles.Header)
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, loading)
	}

	panelWidth := max(20, a.width) - 2
	editorPanel := a.panel(a.focus == focusEditor).Width(panelWidth).Render(a.editor.View())
	resultsPanel := a.panel(a.focus == focusResults).Width(panelWidth).Render(a.results.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderHeader(),
		editorPanel,
		a.pathInput.View(),
		a.urlInput.View(),
		resultsPanel,
		a.renderToast(),
		a.renderKeys(),
	)
}

func (a *App) panel(focused bool) lipgloss.Style {
	if focused {
		return a.styles.FocusedPanel
	}
	return a.styles.Panel
}

func (a *App) renderHeader() string {
	title := StyledText(emoji.GetEmoji("contract")+" ContractLens", a.styles.Title)

	state := describeState(a.sess.State())
	if a.working() {
		if !a.sess.Busy() {
			state = "decoding"
			if a.importing != nil {
				state = "importing"
			}
		}
		state = a.spinner.View() + " " + state
	}
	stateStyle := a.styles.Muted
	switch a.sess.State().(type) {
	case session.Failed:
		stateStyle = a.styles.Error
	case session.Succeeded:
		stateStyle = a.styles.Success
	}

	line := title + "  " + StyledText(describeSource(a.sess.Source()), a.styles.Body) + "  " + StyledText(state, stateStyle)
	return truncate.String(line, uint(max(20, a.width)))
}

func (a *App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	style := a.styles.Info
	prefix := emoji.GetEmoji("info")
	switch a.toast.kind {
	case toastSuccess:
		style = a.styles.Success
		prefix = emoji.GetEmoji("success")
	case toastError:
		style = a.styles.Error
		prefix = emoji.GetEmoji("error")
	}
	return truncate.String(StyledText(prefix+" "+a.toast.text, style), uint(max(20, a.width)))
}

// renderKeys lists the shortcuts; analyze is greyed out while a submission is in flight
func (a *App) renderKeys() string {
	keys := []string{
		a.keyHint("ctrl+r", "analyze", !a.sess.Busy()),
		a.keyHint("ctrl+o", "file", true),
		a.keyHint("ctrl+g", "github", true),
		a.keyHint("ctrl+n", "results", true),
		a.keyHint("f1", "help", true),
		a.keyHint("ctrl+c", "quit", true),
	}
	return truncate.String(strings.Join(keys, "  "), uint(max(20, a.width)))
}

func (a *App) keyHint(key, label string, enabled bool) string {
	if !enabled {
		return StyledText(key+" "+label, a.styles.Disabled)
	}
	return StyledText(key, a.styles.Key) + " " + StyledText(label, a.styles.Muted)
}

var helpLines = [][2]string{
	{"ctrl+r", "analyze the contract"},
	{"ctrl+o", "choose a local file"},
	{"ctrl+g", "import from a GitHub blob URL"},
	{"ctrl+n", "switch between editor and results"},
	{"esc", "leave an input, or cancel in-flight work"},
	{"tab", "indent by two spaces"},
	{"ctrl+z", "undo"},
	{"alt+c", "copy selection"},
	{"ctrl+x", "cut selection"},
	{"ctrl+v", "paste"},
	{"f1", "toggle this help"},
	{"ctrl+c", "quit"},
}

func renderHelp(s *Styles) string {
	lines := make([]string, 0, len(helpLines)+2)
	lines = append(lines, StyledText(emoji.GetEmoji("help")+" Keys", s.Header), "")
	for _, h := range helpLines {
		lines = append(lines, StyledText(padRight(h[0], 8), s.Key)+StyledText(h[1], s.Body))
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s + " "
}
