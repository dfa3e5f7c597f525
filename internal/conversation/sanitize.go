package conversation

import "strings"

// FallbackReply replaces assistant replies that would stall the conversation.
const FallbackReply = "I'm here to help! Could you please provide more details?"

var lowValueReplies = map[string]struct{}{
	"ok":   {},
	"okay": {},
}

var refusalMarkers = []string{
	"i cannot",
	"i can't",
	"i'm an ai",
}

var apostropheNormalizer = strings.NewReplacer(
	"\u2019", "'", // right single quote
	"\u2018", "'", // left single quote
	"\u2032", "'", // prime
)

// SanitizeReply returns the reply to send and whether it was replaced.
// It is total and idempotent: FallbackReply passes through unchanged.
func SanitizeReply(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	normalized := strings.ToLower(apostropheNormalizer.Replace(trimmed))
	if normalized == "" {
		return FallbackReply, true
	}
	if _, ok := lowValueReplies[normalized]; ok {
		return FallbackReply, true
	}
	for _, marker := range refusalMarkers {
		if strings.Contains(normalized, marker) {
			return FallbackReply, true
		}
	}
	return trimmed, false
}
