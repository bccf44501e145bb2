package entrywriter

import (
	"fmt"

	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/setuplog"
)

// FanOut invokes a sequence of EntryWriter[T] in insertion order. A panic
// in one constituent is recovered and isolated so the rest still receive
// the entry, matching the spec's requirement that a failure in one
// constituent writer not prevent writes to the others. This mirrors the
// teacher's logging-pipeline stages, which never let one stage's fault
// stop delivery to the next.
type FanOut[T any] struct {
	writers []EntryWriter[T]
	log     logger.Log
	setup   setuplog.Sink
}

func newFanOut[T any](writers []EntryWriter[T], log logger.Log, setup setuplog.Sink) *FanOut[T] {
	return &FanOut[T]{writers: writers, log: log, setup: setup}
}

// IsEnabled reports true if any constituent writer is enabled.
func (f *FanOut[T]) IsEnabled() bool {
	for _, w := range f.writers {
		if w.IsEnabled() {
			return true
		}
	}
	return false
}

// Write delivers entry to every constituent writer, isolating panics.
func (f *FanOut[T]) Write(entry *T) {
	for _, w := range f.writers {
		f.writeOne(w, entry)
	}
}

func (f *FanOut[T]) writeOne(w EntryWriter[T], entry *T) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("entry writer panicked: %v", r)
			f.log.Errorf("fan-out constituent write failed: %v", err)
			if f.setup != nil {
				f.setup.Record("", setuplog.SeverityError, "fan-out constituent write failed", err)
			}
		}
	}()
	if !w.IsEnabled() {
		return
	}
	w.Write(entry)
}

// Writers returns the constituent writers in fan-out order, for tests and
// diagnostics.
func (f *FanOut[T]) Writers() []EntryWriter[T] {
	out := make([]EntryWriter[T], len(f.writers))
	copy(out, f.writers)
	return out
}
