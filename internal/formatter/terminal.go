package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a terminal formatter
func NewTerminal(color, emoji bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = emoji
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(reports []*Report) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)
	f.writeStatistics(&b, Summarize(reports))

	for _, report := range reports {
		f.writeReport(&b, report)
	}

	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Contract Analysis Summary"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeStatistics writes totals as a tree
func (f *terminalFormatter) writeStatistics(b *strings.Builder, s Summary) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Statistics\n")

	items := []termfmt.TreeItem{
		{Label: "Inputs", Value: formatNumber(s.Inputs)},
		{Label: "Issues", Value: formatNumber(s.Issues)},
		{Label: "Errors", Value: formatNumber(s.Errors)},
		{Label: "Warnings", Value: formatNumber(s.Warnings)},
	}
	if s.Issues > 0 {
		ratio := float64(s.Errors) / float64(s.Issues)
		items = append(items, termfmt.TreeItem{
			Label: "Error share",
			Value: fmt.Sprintf("%s %.0f%%", termfmt.CreateConfidenceBar(ratio, f.opts), ratio*100),
		})
	}
	items = append(items, termfmt.TreeItem{Label: "Failed", Value: formatNumber(s.Failed), Last: true})

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeReport(b *strings.Builder, r *Report) {
	if r.Failed() {
		fmt.Fprintf(b, "%s %s\n", termfmt.GetEmoji("error", f.opts), r.Name)
		reason := "no result"
		if r.Err != nil {
			reason = r.Err.Error()
		}
		b.WriteString("└─ " + reason + "\n\n")
		return
	}

	if r.Result.Empty() {
		fmt.Fprintf(b, "%s %s: no issues found\n\n", termfmt.GetEmoji("success", f.opts), r.Name)
		return
	}

	fmt.Fprintf(b, "%s %s (%s)\n", termfmt.GetEmoji("pattern", f.opts), r.Name, pluralize(r.Result.Count(), "issue"))

	issues := r.Result.Sorted()
	items := make([]termfmt.TreeItem, 0, len(issues))
	for i, issue := range issues {
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%s Line %s", issueEmoji(issue.Type, f.opts), lineLabel(issue.Line)),
			Value: fmt.Sprintf("[%s] %s", issue.Type, singleLine(issue.Message)),
			Last:  i == len(issues)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}
