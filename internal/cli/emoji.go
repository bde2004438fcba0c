package cli

import (
	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/ContractLens/internal/emoji"
)

// GetEmoji is a wrapper for the shared emoji package
func GetEmoji(key string) string {
	return emoji.GetEmoji(key)
}

// GetIssueEmoji returns the emoji for an issue type with fallback support
func GetIssueEmoji(t analysis.IssueType) string {
	return emoji.ForIssueType(string(t))
}
