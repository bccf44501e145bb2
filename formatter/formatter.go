// Package formatter defines the external contract text-oriented sinks
// implement to render entries: a strict begin/end pairing discipline
// with one entry in flight at a time, plus field/line/timestamp
// primitives and the abbreviated-type-name helper the spec's external
// interfaces describe. Concrete renderers (colored console, plain file)
// are out of scope, matching spec.md's Non-goals; this package ships
// only the contract and three reference helpers (AbbreviateTypeName,
// PadField, DefaultColorEnabled).
package formatter

import "time"

// Formatter is implemented by text-oriented sinks. BeginEntry/EndEntry
// must be paired, with at most one entry in flight at a time — enforced
// by the synchronization layer upstream (entrywriter.Synchronizing or a
// background pipeline's single worker), not by Formatter itself.
type Formatter interface {
	BeginEntry(indentLevel int)
	EndEntry()

	WriteField(text string, color Color, padWidth int)
	WriteLines(text string, color Color, indent int)
	WriteTimestamp(utc time.Time)
	WriteDate(utc time.Time)
	WriteAbbreviatedTypeName(name string, color Color, padWidth int)

	LineDelimiter() string
	IsColorEnabled() bool
}

// Color is an abstract color capability; Formatter implementations decide
// how (or whether) to render it. Rendering itself is out of scope.
type Color int

const (
	ColorDefault Color = iota
	ColorRed
	ColorYellow
	ColorGreen
	ColorCyan
	ColorGray
)
