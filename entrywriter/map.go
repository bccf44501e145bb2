package entrywriter

import (
	"reflect"
	"sync"

	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/setuplog"
)

// Map is a mapping from entry type to entry writer instance(s), keyed by
// reflect.Type. It is the Go realization of the spec's "type-id witness"
// registry: Go generics cannot hold a single homogeneous map over an
// EntryWriter[T] for varying T, so the map is untyped internally and
// TryGet recovers the concrete type at the call site via its own type
// parameter.
//
// Mutation (Register) is only safe while the owning LogWriter is
// Unstarted or Stopped; reads (TryGet) are safe at any time, matching the
// spec's "entry-writer maps are read-mostly" resource-model note.
type Map struct {
	mu      sync.RWMutex
	writers map[reflect.Type][]any
	log     logger.Log
	setup   setuplog.Sink
}

// NewMap returns an empty Map that reports fan-out constituent faults to
// log and setup. Either may be nil, in which case faults are discarded.
func NewMap(log logger.Log, setup setuplog.Sink) *Map {
	if log == nil {
		log = logger.NewNoOpLog()
	}
	return &Map{writers: make(map[reflect.Type][]any), log: log, setup: setup}
}

// Register adds w as an entry writer for type T. Multiple registrations
// for the same T are preserved in insertion order and combined into a
// FanOut by TryGet.
func Register[T any](m *Map, w EntryWriter[T]) {
	t := typeOf[T]()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writers[t] = append(m.writers[t], w)
}

// TryGet returns the entry writer registered for T: the single writer if
// exactly one was registered, a FanOut composite if more than one was,
// or ok=false if none was.
func TryGet[T any](m *Map) (writer EntryWriter[T], ok bool) {
	t := typeOf[T]()
	m.mu.RLock()
	defer m.mu.RUnlock()
	boxed := m.writers[t]
	switch len(boxed) {
	case 0:
		return nil, false
	case 1:
		return boxed[0].(EntryWriter[T]), true
	default:
		writers := make([]EntryWriter[T], len(boxed))
		for i, b := range boxed {
			writers[i] = b.(EntryWriter[T])
		}
		return newFanOut(writers, m.log, m.setup), true
	}
}

// Types returns the entry types currently registered, for diagnostics and
// for LogWriter.EntryTypes.
func (m *Map) Types() []reflect.Type {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]reflect.Type, 0, len(m.writers))
	for t := range m.writers {
		out = append(out, t)
	}
	return out
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
