package notify

// splitMessage breaks text into chunks of at most limit characters. Breaks
// happen at the last newline or ", " separator that fits, so an ID is never
// cut in half unless a single token exceeds the limit.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)

	var parts []string
	for len(runes) > limit {
		cut, skip := lastBreak(runes, limit)
		if cut <= 0 {
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
			continue
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut+skip:]
	}
	if len(runes) > 0 || len(parts) == 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

// lastBreak returns the index of the last separator starting at or before
// limit, and the separator's length.
func lastBreak(runes []rune, limit int) (int, int) {
	for i := min(limit, len(runes)-1); i > 0; i-- {
		switch {
		case runes[i] == '\n':
			return i, 1
		case runes[i] == ',' && i+1 < len(runes) && runes[i+1] == ' ':
			return i, 2
		}
	}
	return -1, 0
}
