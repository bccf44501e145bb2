package entrywriter

import (
	"sync"

	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/setuplog"
	"github.com/fluxlog/fluxlog/startable"
)

// LogWriter is a named collection of entry writers keyed by entry type.
// It implements the Startable lifecycle via an embedded *startable.Machine
// so it can be owned directly by a LogManager.
type LogWriter struct {
	*startable.Machine

	Name           string
	entries        *Map
	isSynchronized bool
}

// NewLogWriter constructs a LogWriter. synchronized should be true only
// if the caller guarantees concurrent Write calls on the registered entry
// writers are already safe (e.g. the writer is itself a background
// pipeline proxy, which serializes through its single worker).
func NewLogWriter(name string, synchronized bool, log logger.Log, setup setuplog.Sink) *LogWriter {
	lw := &LogWriter{
		Name:           name,
		entries:        NewMap(log, setup),
		isSynchronized: synchronized,
	}
	lw.Machine = startable.New(name, log, setup, nil, nil)
	return lw
}

// IsSynchronized reports whether concurrent Write calls on this writer's
// entry writers are safe without an external synchronizing decorator.
func (w *LogWriter) IsSynchronized() bool {
	return w.isSynchronized
}

// RegisterOn adds an entry writer for type T. Only safe to call while the
// LogWriter is Unstarted or Stopped.
func RegisterOn[T any](w *LogWriter, writer EntryWriter[T]) {
	Register(w.entries, writer)
}

// TryGetEntryWriter returns the entry writer registered on w for type T.
func TryGetEntryWriter[T any](w *LogWriter) (EntryWriter[T], bool) {
	return TryGet[T](w.entries)
}

// EntryTypes lists the entry types this writer has at least one
// constituent registered for.
func (w *LogWriter) EntryTypes() []string {
	types := w.entries.Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

// Synchronizing wraps an EntryWriter[T] with a mutex so concurrent Write
// calls are safe, for use when a LogWriter reports IsSynchronized()==false.
// The default initializer chain (see package manager) inserts this
// automatically and suppresses it when a background pipeline is already
// in front, since the pipeline's single worker already serializes writes.
type Synchronizing[T any] struct {
	inner EntryWriter[T]
	mu    sync.Mutex
}

// Sync wraps inner in a Synchronizing decorator.
func Sync[T any](inner EntryWriter[T]) *Synchronizing[T] {
	return &Synchronizing[T]{inner: inner}
}

func (s *Synchronizing[T]) IsEnabled() bool {
	return s.inner.IsEnabled()
}

func (s *Synchronizing[T]) Write(entry *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Write(entry)
}

func (s *Synchronizing[T]) IsSynchronized() bool { return true }
