package tracing

import (
	"fmt"
	"sync/atomic"

	"github.com/fluxlog/fluxlog/entrywriter"
	"github.com/fluxlog/fluxlog/setuplog"
)

// Writer is the interface Tracer routes through: either a single
// TraceWriter, a FanOutTraceWriter, or the no-op writer when nothing is
// configured downstream.
type Writer interface {
	IsEnabled(tracerName string, level Level) bool
	Write(entry *Entry)
}

// TraceWriter wraps an entrywriter.EntryWriter[Entry] plus a Switch. Each
// write evaluates the switch; a fault in the inner writer is isolated,
// counted, and the first occurrence is reported to the setup log —
// subsequent occurrences are suppressed to avoid log floods, matching
// the spec's transient-write-error handling (§7) and mirroring
// TraceWriter's sibling fault isolation in entrywriter.FanOut.
type TraceWriter struct {
	sw     Switch
	inner  entrywriter.EntryWriter[Entry]
	setup  setuplog.Sink
	faults atomic.Int64
}

// NewTraceWriter builds a TraceWriter. setup may be nil to discard fault
// reports.
func NewTraceWriter(sw Switch, inner entrywriter.EntryWriter[Entry], setup setuplog.Sink) *TraceWriter {
	return &TraceWriter{sw: sw, inner: inner, setup: setup}
}

func (w *TraceWriter) IsEnabled(tracerName string, level Level) bool {
	return w.inner.IsEnabled() && w.sw.IsEnabled(tracerName, level)
}

func (w *TraceWriter) Write(entry *Entry) {
	if !w.IsEnabled(entry.TracerName, entry.Level) {
		return
	}
	w.writeIsolated(entry)
}

func (w *TraceWriter) writeIsolated(entry *Entry) {
	defer func() {
		if r := recover(); r != nil {
			count := w.faults.Add(1)
			if count == 1 && w.setup != nil {
				w.setup.Record("", setuplog.SeverityError,
					fmt.Sprintf("trace writer fault for %s: %v", entry.TracerName, r), nil)
			}
		}
	}()
	w.inner.Write(entry)
}

// FaultCount returns how many times this writer's inner writer has
// faulted, for diagnostics and tests.
func (w *TraceWriter) FaultCount() int64 {
	return w.faults.Load()
}

// FanOutTraceWriter holds an array of TraceWriters, each evaluated
// independently so different sinks may accept or reject the same entry
// by different criteria.
type FanOutTraceWriter struct {
	writers []*TraceWriter
}

func NewFanOutTraceWriter(writers ...*TraceWriter) *FanOutTraceWriter {
	return &FanOutTraceWriter{writers: writers}
}

func (f *FanOutTraceWriter) IsEnabled(tracerName string, level Level) bool {
	for _, w := range f.writers {
		if w.IsEnabled(tracerName, level) {
			return true
		}
	}
	return false
}

func (f *FanOutTraceWriter) Write(entry *Entry) {
	for _, w := range f.writers {
		w.Write(entry)
	}
}

// noOpWriter is the writer a new Tracer from Factory holds until its owner
// sets another one.
type noOpWriter struct{}

func (noOpWriter) IsEnabled(string, Level) bool { return false }
func (noOpWriter) Write(*Entry)                 {}
