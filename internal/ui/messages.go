package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/ContractLens/internal/session"
)

// Messages carry the ticket they were issued under so stale completions can be dropped
type decodedMsg struct {
	ticket *session.DecodeTicket
	text   string
	err    error
}

type importDoneMsg struct {
	ticket *session.ImportTicket
	text   string
	err    error
}

type submitDoneMsg struct {
	sub    *session.Submission
	result *analysis.Result
	err    error
}

type toastExpiredMsg struct {
	id int
}

// CreateDecodeCommand decodes a selected file off the update loop
func CreateDecodeCommand(t *session.DecodeTicket) tea.Cmd {
	return func() tea.Msg {
		text, err := t.Decode()
		return decodedMsg{ticket: t, text: text, err: err}
	}
}

// CreateImportCommand fetches an import URL
func CreateImportCommand(imp session.Importer, t *session.ImportTicket) tea.Cmd {
	return func() tea.Msg {
		text, err := imp.Fetch(t.Ctx, t.URL)
		return importDoneMsg{ticket: t, text: text, err: err}
	}
}

// CreateAnalysisCommand submits a payload to the analysis service
func CreateAnalysisCommand(a session.Analyzer, sub *session.Submission) tea.Cmd {
	return func() tea.Msg {
		result, err := a.Analyze(sub.Ctx, sub.Payload)
		return submitDoneMsg{sub: sub, result: result, err: err}
	}
}

func expireToast(id int, after time.Duration) tea.Cmd {
	if after <= 0 {
		return nil
	}
	return tea.Tick(after, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}
