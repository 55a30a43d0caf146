package filter

import "strings"

// Line is one line of a text document with its terminator.
type Line struct {
	Content string
	// Break is "\n", "\r\n", "\r" or empty for a last line without terminator.
	Break string
}

// SplitLines splits text into lines, keeping every line terminator so that
// joining Content+Break of all lines gives text back.
func SplitLines(text string) []Line {
	var lines []Line
	for text != "" {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			lines = append(lines, Line{Content: text})
			break
		}
		brk := text[i : i+1]
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			brk = "\r\n"
		}
		lines = append(lines, Line{Content: text[:i], Break: brk})
		text = text[i+len(brk):]
	}
	return lines
}

// DetectLineBreak returns the first line terminator used in text, or "\n".
func DetectLineBreak(text string) string {
	for _, l := range SplitLines(text) {
		if l.Break != "" {
			return l.Break
		}
	}
	return "\n"
}

// SplitSpace splits s into leading whitespace, trimmed content and trailing whitespace.
func SplitSpace(s string) (lead, body, trail string) {
	body = strings.TrimLeft(s, " \t")
	lead = s[:len(s)-len(body)]
	trimmed := strings.TrimRight(body, " \t")
	trail = body[len(trimmed):]
	return lead, trimmed, trail
}
