package markup

import "strings"

// FindLine locates the first occurrence of text in source and returns its
// 1-based line and column. Lines are scanned one by one; text spanning lines
// falls back to a whole-source search. Both are 0 when text is not found.
func FindLine(source, text string) (line, col int) {
	if text == "" {
		return 0, 0
	}
	for i, l := range strings.Split(source, "\n") {
		if idx := strings.Index(l, text); idx >= 0 {
			return i + 1, idx + 1
		}
	}

	idx := strings.Index(source, text)
	if idx < 0 {
		return 0, 0
	}
	before := source[:idx]
	line = strings.Count(before, "\n") + 1
	col = idx - strings.LastIndex(before, "\n")
	return line, col
}
