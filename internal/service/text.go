package service

import "strings"

// Character limits for the text fields of a post.
const (
	MaxPromptLen  = 800
	MaxSynthLen   = 260
	MaxCaptionLen = 400
)

// normalizeText collapses all whitespace runs to single spaces, trims, and
// truncates to maxLen characters (runes, not bytes).
func normalizeText(s string, maxLen int) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	runes := []rune(collapsed)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return collapsed
}
