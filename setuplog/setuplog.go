// Package setuplog implements the Setup Log: an in-memory, append-only,
// thread-safe diagnostic channel recording configuration decisions,
// component start/stop events, background-action faults, and
// finalizer-path warnings for the logging system itself. It is never
// routed through a backgroundpipeline, since doing so would make the
// logging system depend on its own shutdown sequence to report faults
// about that sequence.
package setuplog

import (
	"sync"
	"time"
)

// Severity orders setup-log entries the same way tracing.Level orders
// trace entries, but is kept as its own type since the setup log has no
// dependency on the tracing package (tracing depends on setuplog instead,
// not the other way around).
type Severity int

const (
	SeverityVerbose Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityVerbose:
		return "Verbose"
	case SeverityDebug:
		return "Debug"
	case SeverityInfo:
		return "Info"
	case SeverityWarn:
		return "Warn"
	case SeverityError:
		return "Error"
	case SeveritySevere:
		return "Severe"
	default:
		return "Unknown"
	}
}

// Entry is a single setup-log record: a trace-shaped diagnostic tagged
// with the component that raised it.
type Entry struct {
	TimestampUTC time.Time
	Component    string
	Severity     Severity
	Message      string
	Err          error
}

// Sink accepts setup-log entries. Components hold a Sink rather than a
// *Log directly so that tests can substitute a recording fake.
type Sink interface {
	Record(component string, severity Severity, message string, err error)
}

// Clock is the minimal time source setuplog needs; satisfied by both
// *clock.Clock (github.com/benbjohnson/clock) in production and a
// deterministic fake in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Log is the append-only setup log. The zero value is not usable; use New.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	clock   Clock
}

// New returns an empty Log using the real wall clock.
func New() *Log {
	return NewWithClock(realClock{})
}

// NewWithClock returns an empty Log using clock as its time source, for
// deterministic tests.
func NewWithClock(clock Clock) *Log {
	return &Log{clock: clock}
}

// Record appends an entry. It never blocks on I/O and never returns an
// error: the setup log is a last line of diagnostic defense and must not
// itself be a source of failure.
func (l *Log) Record(component string, severity Severity, message string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{
		TimestampUTC: l.clock.Now(),
		Component:    component,
		Severity:     severity,
		Message:      message,
		Err:          err,
	})
}

// Entries returns a snapshot copy of the recorded entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset clears all recorded entries. Used by configuration reset (spec
// Testable Property 10) to return the manager to a fresh diagnostic state.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// IsHealthy reports whether every recorded entry is at or below Info
// severity, matching LogManager.IsHealthy's contract.
func (l *Log) IsHealthy() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.Severity > SeverityInfo {
			return false
		}
	}
	return true
}

// Scoped returns a Sink that tags every recorded entry with component,
// for handing to a single owner (a pipeline, a writer, a manager) without
// exposing the rest of the Log's API.
func (l *Log) Scoped(component string) Sink {
	return &scopedSink{log: l, component: component}
}

type scopedSink struct {
	log       *Log
	component string
}

func (s *scopedSink) Record(component string, severity Severity, message string, err error) {
	if component == "" {
		component = s.component
	}
	s.log.Record(component, severity, message, err)
}
