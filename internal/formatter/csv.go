package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// csvFormatter writes one row per issue
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(reports []*Report) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	headers := []string{"Source", "Line", "Type", "Message", "Request ID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range reports {
		if r.Failed() {
			message := "no result"
			if r.Err != nil {
				message = r.Err.Error()
			}
			if err := writer.Write([]string{r.Name, "", "failed", singleLine(message), r.RequestID}); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}

		for _, issue := range r.Result.Sorted() {
			record := []string{
				r.Name,
				fmt.Sprintf("%d", issue.Line),
				string(issue.Type),
				singleLine(issue.Message),
				r.RequestID,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}
