// Package tracing implements named trace sources routed through
// per-source switches to zero or more underlying entry writers: the
// TraceSwitch/TraceWriter/Tracer/TracerFactory component group.
package tracing

// Level orders trace entries by severity, from most to least verbose.
type Level int

const (
	Verbose Level = iota
	Debug
	Info
	Warn
	Error
	Severe
)

func (l Level) String() string {
	switch l {
	case Verbose:
		return "Verbose"
	case Debug:
		return "Debug"
	case Info:
		return "Info"
	case Warn:
		return "Warn"
	case Error:
		return "Error"
	case Severe:
		return "Severe"
	default:
		return "Unknown"
	}
}
