package formatter

import (
	"fmt"
	"strings"
	"time"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(reports []*Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Contract Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	f.writeSummaryTable(&b, Summarize(reports))

	for _, r := range reports {
		f.writeReport(&b, r)
	}

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, s Summary) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Inputs | %s |\n", formatNumber(s.Inputs))
	fmt.Fprintf(b, "| Issues | %s |\n", formatNumber(s.Issues))
	fmt.Fprintf(b, "| Errors | %s |\n", formatNumber(s.Errors))
	fmt.Fprintf(b, "| Warnings | %s |\n", formatNumber(s.Warnings))
	fmt.Fprintf(b, "| Info | %s |\n", formatNumber(s.Info))
	fmt.Fprintf(b, "| Failed | %s |\n\n", formatNumber(s.Failed))
}

func (f *markdownFormatter) writeReport(b *strings.Builder, r *Report) {
	fmt.Fprintf(b, "## %s\n\n", escapeMarkdown(r.Name))

	if r.Failed() {
		reason := "no result"
		if r.Err != nil {
			reason = r.Err.Error()
		}
		fmt.Fprintf(b, "**Analysis failed:** %s\n\n", escapeMarkdown(reason))
		return
	}

	if r.Result.Empty() {
		b.WriteString("No issues found.\n\n")
		return
	}

	b.WriteString("| Line | Type | Message |\n")
	b.WriteString("|------|------|---------|\n")
	for _, issue := range r.Result.Sorted() {
		fmt.Fprintf(b, "| %s | %s | %s |\n",
			lineLabel(issue.Line), escapeMarkdown(string(issue.Type)), escapeMarkdown(singleLine(issue.Message)))
	}
	b.WriteString("\n")
}

var markdownEscaper = strings.NewReplacer("|", "\\|", "`", "\\`", "*", "\\*", "_", "\\_")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
