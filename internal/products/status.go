package products

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FormatStatus turns an underscore-delimited status tag into a display
// label: each word gets an upper-case first letter, the word "eol" in any
// case becomes "EOL", and words are joined with " - ".
func FormatStatus(status string) string {
	if status == "" {
		return ""
	}
	words := strings.Split(status, "_")
	for i, w := range words {
		if strings.EqualFold(w, "eol") {
			words[i] = "EOL"
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " - ")
}
