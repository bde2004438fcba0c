package formatter

import (
	"encoding/json"
	"time"

	"github.com/yildizm/ContractLens/internal/analysis"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the document written by the JSON formatter
type JSONOutput struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Summary     Summary         `json:"summary"`
	Reports     []*ReportOutput `json:"reports"`
}

// ReportOutput is one input in JSONOutput
type ReportOutput struct {
	Name       string           `json:"name"`
	Origin     string           `json:"origin,omitempty"`
	RequestID  string           `json:"request_id,omitempty"`
	DurationMS int64            `json:"duration_ms"`
	Issues     []analysis.Issue `json:"issues"`
	Error      string           `json:"error,omitempty"`
}

func (f *jsonFormatter) Format(reports []*Report) ([]byte, error) {
	output := &JSONOutput{
		GeneratedAt: time.Now().UTC(),
		Summary:     Summarize(reports),
		Reports:     make([]*ReportOutput, 0, len(reports)),
	}

	for _, r := range reports {
		out := &ReportOutput{
			Name:       r.Name,
			Origin:     r.Origin,
			RequestID:  r.RequestID,
			DurationMS: r.Duration.Milliseconds(),
			Issues:     []analysis.Issue{},
		}
		if r.Err != nil {
			out.Error = r.Err.Error()
		}
		if r.Result != nil {
			out.Issues = r.Result.Sorted()
		}
		output.Reports = append(output.Reports, out)
	}

	return json.MarshalIndent(output, "", "  ")
}
