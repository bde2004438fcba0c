package ui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/ContractLens/internal/contract"
	"github.com/yildizm/ContractLens/internal/emoji"
	"github.com/yildizm/ContractLens/internal/session"
)

const (
	noSubmissionText = "No analysis yet. Press ctrl+r to analyze the contract."
	noIssuesText     = "No issues found."
)

// renderResults renders the results panel body. A nil result and an empty
// result are different states and render differently.
func renderResults(result *analysis.Result, width int, s *Styles) string {
	if result == nil {
		return StyledText(noSubmissionText, s.Muted)
	}
	if result.Empty() {
		return StyledText(emoji.GetEmoji("success")+" "+noIssuesText, s.Success)
	}

	width = max(20, width)
	var b strings.Builder
	b.WriteString(StyledText(fmt.Sprintf("%d %s", result.Count(), pluralIssues(result.Count())), s.Header))
	b.WriteString("\n")

	for _, issue := range result.Sorted() {
		kind := strings.ToLower(string(issue.Type))
		label := fmt.Sprintf("%s Line %d [%s]", emoji.GetEmoji(emoji.ForIssueType(kind)), issue.Line, issue.Type)
		if issue.Line <= 0 {
			label = fmt.Sprintf("%s [%s]", emoji.GetEmoji(emoji.ForIssueType(kind)), issue.Type)
		}
		b.WriteString("\n")
		b.WriteString(StyledText(label, s.Issue(kind)))
		b.WriteString("\n")

		for _, line := range strings.Split(wordwrap.String(issue.Message, width-4), "\n") {
			b.WriteString("    ")
			b.WriteString(StyledText(line, s.Body))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func pluralIssues(n int) string {
	if n == 1 {
		return "issue"
	}
	return "issues"
}

// describeSource names the authoritative input for the header
func describeSource(src contract.Source) string {
	switch s := src.(type) {
	case contract.File:
		label := fmt.Sprintf("%s %s (%s)", emoji.GetEmoji("file"), s.File.Name, contract.HumanBytes(s.File.Size))
		switch {
		case s.Pending:
			label += " decoding..."
		case s.DecodeErr != nil:
			label += " not displayable, bytes will be sent as-is"
		}
		return label
	case contract.Imported:
		return emoji.GetEmoji("github") + " " + s.URL
	default:
		return emoji.GetEmoji("contract") + " typed contract"
	}
}

// describeState renders the submission state for the header
func describeState(state session.State) string {
	switch st := state.(type) {
	case session.Validating:
		return "validating"
	case session.Submitting:
		return "analyzing"
	case session.Succeeded:
		if st.Result.Empty() {
			return "no issues"
		}
		return fmt.Sprintf("%d %s", st.Result.Count(), pluralIssues(st.Result.Count()))
	case session.Failed:
		return "failed"
	default:
		return "ready"
	}
}
