package pipeline

// Preview returns the first n characters of text, followed by "..." when text is longer.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
