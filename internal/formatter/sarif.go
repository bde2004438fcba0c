package formatter

import (
	"encoding/json"
	"strings"

	"github.com/yildizm/ContractLens/internal/analysis"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
	toolName     = "contractlens"
	toolURI      = "https://github.com/yildizm/ContractLens"
)

// sarifFormatter writes SARIF 2.1.0 for code-scanning integrations
type sarifFormatter struct {
	version string
}

// NewSARIF creates a SARIF formatter reporting toolVersion as the driver version
func NewSARIF(toolVersion string) Formatter {
	return &sarifFormatter{version: toolVersion}
}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Results     []sarifResult     `json:"results"`
	Invocations []sarifInvocation `json:"invocations"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

type sarifInvocation struct {
	ExecutionSuccessful        bool                `json:"executionSuccessful"`
	ToolExecutionNotifications []sarifNotification `json:"toolExecutionNotifications,omitempty"`
}

type sarifNotification struct {
	Level   string       `json:"level"`
	Message sarifMessage `json:"message"`
}

func (f *sarifFormatter) Format(reports []*Report) ([]byte, error) {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           toolName,
			Version:        f.version,
			InformationURI: toolURI,
			Rules:          []sarifRule{},
		}},
		Results: []sarifResult{},
	}

	seenRules := make(map[string]bool)
	invocation := sarifInvocation{ExecutionSuccessful: true}

	for _, r := range reports {
		if r.Failed() {
			invocation.ExecutionSuccessful = false
			message := r.Name + ": no result"
			if r.Err != nil {
				message = r.Name + ": " + r.Err.Error()
			}
			invocation.ToolExecutionNotifications = append(invocation.ToolExecutionNotifications,
				sarifNotification{Level: "error", Message: sarifMessage{Text: message}})
			continue
		}

		for _, issue := range r.Result.Sorted() {
			ruleID := ruleIDFor(issue.Type)
			if !seenRules[ruleID] {
				seenRules[ruleID] = true
				run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
					ID:               ruleID,
					ShortDescription: sarifMessage{Text: "Analysis finding of type " + string(issue.Type)},
				})
			}

			location := sarifLocation{PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifact{URI: r.Name},
			}}
			if issue.Line > 0 {
				location.PhysicalLocation.Region = &sarifRegion{StartLine: issue.Line}
			}

			run.Results = append(run.Results, sarifResult{
				RuleID:    ruleID,
				Level:     sarifLevel(issue.Type),
				Message:   sarifMessage{Text: issue.Message},
				Locations: []sarifLocation{location},
			})
		}
	}
	run.Invocations = []sarifInvocation{invocation}

	return json.MarshalIndent(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}}, "", "  ")
}

func ruleIDFor(t analysis.IssueType) string {
	kind := strings.ToLower(strings.TrimSpace(string(t)))
	if kind == "" {
		kind = "finding"
	}
	return toolName + "/" + kind
}

// sarifLevel maps issue types onto SARIF result levels
func sarifLevel(t analysis.IssueType) string {
	switch analysis.IssueType(strings.ToLower(string(t))) {
	case analysis.IssueError:
		return "error"
	case analysis.IssueWarning:
		return "warning"
	default:
		return "note"
	}
}
