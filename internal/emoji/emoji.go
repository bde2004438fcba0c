package emoji

import "strings"

// emojiMap holds [emoji, fallback] pairs
var emojiMap = map[string][2]string{
	"error":    {"❌", "[ERR]"},
	"warning":  {"⚠️", "[WRN]"},
	"info":     {"ℹ️", "[INF]"},
	"success":  {"✅", "[OK]"},
	"issue":    {"🔍", "[ISS]"},
	"contract": {"📜", "[SRC]"},
	"file":     {"📄", "[FILE]"},
	"github":   {"🐙", "[GH]"},
	"upload":   {"📤", "[UP]"},
	"rocket":   {"🚀", "[RUN]"},
	"watch":    {"👀", "[WATCH]"},
	"help":     {"❓", "[?]"},
	"door":     {"🚪", "[EXIT]"},
	"clip":     {"📋", "[CLIP]"},
	"chart":    {"📊", "[SUM]"},
	"folder":   {"📁", "[DIR]"},
	"target":   {"🎯", "[CUR]"},
	"tip":      {"💡", "[TIP]"},
	"save":     {"💾", "[SAVE]"},
}

var emojiDisabled bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled = disabled
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled {
			return mapping[1]
		}
		return mapping[0]
	}
	return "[?]"
}

// ForIssueType returns the symbol for an analysis issue type
func ForIssueType(issueType string) string {
	switch strings.ToLower(issueType) {
	case "error", "warning", "info":
		return GetEmoji(strings.ToLower(issueType))
	default:
		return GetEmoji("issue")
	}
}
