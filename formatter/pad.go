package formatter

import (
	"strings"
	"unicode/utf8"
)

// truncateWithEllipsis returns s truncated to at most maxChars runes, with
// the last 3 characters replaced by "..." when it had to cut anything and
// there's room for the ellipsis.
func truncateWithEllipsis(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	if maxChars > 3 {
		return string(runes[:maxChars-3]) + "..."
	}
	return string(runes[:maxChars])
}

// PadField truncates text to padWidth (with an ellipsis when it had to cut
// anything) and then right-pads it with spaces so fields line up in a
// fixed-width rendering. A concrete Formatter's WriteField implementation
// can use this to satisfy the pad_width argument the spec's external
// interface describes.
func PadField(text string, padWidth int) string {
	if padWidth <= 0 {
		return text
	}
	truncated := truncateWithEllipsis(text, padWidth)
	if n := utf8.RuneCountInString(truncated); n < padWidth {
		truncated += strings.Repeat(" ", padWidth-n)
	}
	return truncated
}
