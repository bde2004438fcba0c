package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/go-termfmt"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// issueEmoji returns the symbol for an issue type
func issueEmoji(t analysis.IssueType, opts *termfmt.TerminalOptions) string {
	switch analysis.IssueType(strings.ToLower(string(t))) {
	case analysis.IssueError:
		return termfmt.GetEmoji("error", opts)
	case analysis.IssueWarning:
		return termfmt.GetEmoji("warning", opts)
	case analysis.IssueInfo:
		return termfmt.GetEmoji("info", opts)
	default:
		return termfmt.GetEmoji("insight", opts)
	}
}

// lineLabel renders a line number, or "-" when the service gave none
func lineLabel(line int) string {
	if line <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", line)
}

// singleLine collapses newlines so a message fits one table cell
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

// pluralize returns "1 issue" or "n issues"
func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%s %ss", formatNumber(n), word)
}
