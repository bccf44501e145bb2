package formatter

import (
	"strings"
	"unicode"
)

// AbbreviateTypeName shortens the first ⌊dots/2⌋+1 dotted segments of a
// fully-qualified name to their first character (lower-cased) plus any
// non-lowercase characters in that segment, leaving the remaining
// segments untouched. E.g. "github.com.fluxlog.BackgroundPipeline" with
// 3 dots shortens its first 2 segments: "g.c.fluxlog.BackgroundPipeline".
func AbbreviateTypeName(name string) string {
	segments := strings.Split(name, ".")
	dots := len(segments) - 1
	if dots <= 0 {
		return name
	}
	toShorten := dots/2 + 1
	if toShorten > len(segments) {
		toShorten = len(segments)
	}
	for i := 0; i < toShorten; i++ {
		segments[i] = abbreviateSegment(segments[i])
	}
	return strings.Join(segments, ".")
}

func abbreviateSegment(segment string) string {
	if segment == "" {
		return segment
	}
	runes := []rune(segment)
	var b strings.Builder
	b.WriteRune(unicode.ToLower(runes[0]))
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
