// Package formatter renders analysis reports for the terminal, for files and
// for CI systems.
package formatter

import (
	"time"

	"github.com/yildizm/ContractLens/internal/analysis"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(reports []*Report) ([]byte, error)
}

// Report is the outcome of analyzing one input
type Report struct {
	// Name identifies the input: a path, "stdin" or a URL
	Name      string
	Origin    string
	RequestID string
	Result    *analysis.Result
	Err       error
	Duration  time.Duration
}

// Failed reports whether the input could not be analyzed
func (r *Report) Failed() bool {
	return r.Err != nil || r.Result == nil
}

// Summary aggregates counts across reports
type Summary struct {
	Inputs   int `json:"inputs"`
	Failed   int `json:"failed"`
	Issues   int `json:"issues"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Summarize counts issues by type across reports
func Summarize(reports []*Report) Summary {
	s := Summary{Inputs: len(reports)}
	for _, r := range reports {
		if r.Failed() {
			s.Failed++
			continue
		}
		s.Issues += r.Result.Count()
		counts := r.Result.CountByType()
		s.Errors += counts[analysis.IssueError]
		s.Warnings += counts[analysis.IssueWarning]
		s.Info += counts[analysis.IssueInfo]
	}
	return s
}
