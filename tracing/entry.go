package tracing

import "time"

// Entry is the value type flowing through the trace pipeline: created at
// the trace call site and immutable thereafter.
type Entry struct {
	TimestampUTC time.Time
	TracerName   string
	Level        Level
	Message      string
	Details      map[string]any
	Err          error
}
