package bot

import "strings"

// Triggers are the substrings that mark a message as a video link.
var Triggers = []string{"youtube.com", "youtu.be"}

// Matches reports whether text contains any trigger fragment.
func Matches(text string) bool {
	for _, t := range Triggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// ExtractURL returns the first whitespace separated token of text that
// contains a trigger fragment. If none does, the trimmed text is returned.
func ExtractURL(text string) string {
	for _, field := range strings.Fields(text) {
		if Matches(field) {
			return strings.Trim(field, "<>()[]\"'.,")
		}
	}
	return strings.TrimSpace(text)
}
