package llm

import "strings"

const fence = "```"

// StripCodeFence removes a leading markdown fence (with an optional language tag such as
// "json") and a trailing fence, then trims whitespace. The two ends are handled
// independently so a reply that only opens or only closes a fence is still cleaned.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		s = s[langTagLen(s):]
	}
	if strings.HasSuffix(s, fence) {
		s = s[:len(s)-len(fence)]
	}
	return strings.TrimSpace(s)
}

// langTagLen returns the length of an info string directly after an opening fence.
func langTagLen(s string) int {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '+':
			continue
		default:
			return i
		}
	}
	return len(s)
}
