package analysis

import (
	"sort"
	"strings"
)

// IssueType is the category tag reported by the analysis service
type IssueType string

// Known issue types. Other values are rendered generically.
const (
	IssueError   IssueType = "error"
	IssueWarning IssueType = "warning"
	IssueInfo    IssueType = "info"
)

// Issue is one finding returned by the analysis service
type Issue struct {
	Line    int       `json:"line"`
	Type    IssueType `json:"type"`
	Message string    `json:"message"`
}

// IsError reports whether the issue is tagged as an error
func (i Issue) IsError() bool {
	return strings.EqualFold(string(i.Type), string(IssueError))
}

// Result is the immutable response of a successful submission.
// A nil *Result means nothing has been submitted yet; an empty Issues slice means no issues found.
type Result struct {
	Issues []Issue `json:"issues"`
}

// Empty reports the "no issues found" state
func (r *Result) Empty() bool {
	return r != nil && len(r.Issues) == 0
}

// Count returns the number of issues
func (r *Result) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Issues)
}

// CountByType tallies issues per lower-cased type
func (r *Result) CountByType() map[IssueType]int {
	counts := make(map[IssueType]int)
	if r == nil {
		return counts
	}
	for _, issue := range r.Issues {
		counts[IssueType(strings.ToLower(string(issue.Type)))]++
	}
	return counts
}

// ErrorCount returns the number of error-tagged issues
func (r *Result) ErrorCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, issue := range r.Issues {
		if issue.IsError() {
			n++
		}
	}
	return n
}

// Sorted returns a copy of the issues ordered by line, errors first on ties
func (r *Result) Sorted() []Issue {
	if r == nil {
		return nil
	}
	issues := make([]Issue, len(r.Issues))
	copy(issues, r.Issues)
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].IsError() && !issues[j].IsError()
	})
	return issues
}
