package tracing

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Clock is the minimal time source a Tracer needs.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Tracer is the user-facing trace API, bound to a name and a switched
// writer. Writer replacement (on reconfiguration) is a single atomic
// pointer swap — no locks on the hot path, only the memory-fence
// semantics atomic.Pointer already provides, per spec §4.5/§9.
type Tracer struct {
	name   string
	writer atomic.Pointer[Writer]
	clock  Clock
}

func newTracer(name string, clock Clock) *Tracer {
	t := &Tracer{name: name, clock: clock}
	var w Writer = noOpWriter{}
	t.writer.Store(&w)
	return t
}

// Name returns the tracer's trimmed name.
func (t *Tracer) Name() string { return t.name }

func (t *Tracer) setWriter(w Writer) {
	t.writer.Store(&w)
}

// SetWriter atomically replaces this tracer's writer. Exposed for
// owners like manager.TraceManager that resolve one tracer's writer at a
// time rather than reconfiguring the whole factory at once.
func (t *Tracer) SetWriter(w Writer) {
	t.setWriter(w)
}

func (t *Tracer) currentWriter() Writer {
	return *t.writer.Load()
}

// IsEnabled reports whether a call at level would actually be written,
// letting callers skip formatting an expensive message on cold paths.
func (t *Tracer) IsEnabled(level Level) bool {
	return t.currentWriter().IsEnabled(t.name, level)
}

func (t *Tracer) emit(level Level, message string, details map[string]any, err error) {
	w := t.currentWriter()
	if !w.IsEnabled(t.name, level) {
		return
	}
	w.Write(&Entry{
		TimestampUTC: t.clock.Now(),
		TracerName:   t.name,
		Level:        level,
		Message:      message,
		Details:      details,
		Err:          err,
	})
}

func (t *Tracer) Verbose(message string)                         { t.emit(Verbose, message, nil, nil) }
func (t *Tracer) Debug(message string)                           { t.emit(Debug, message, nil, nil) }
func (t *Tracer) Info(message string)                            { t.emit(Info, message, nil, nil) }
func (t *Tracer) Warn(message string)                            { t.emit(Warn, message, nil, nil) }
func (t *Tracer) Error(message string, err error)                { t.emit(Error, message, nil, err) }
func (t *Tracer) Severe(message string, err error)                { t.emit(Severe, message, nil, err) }
func (t *Tracer) WithDetails(level Level, message string, details map[string]any) {
	t.emit(level, message, details, nil)
}

// Factory guarantees identity by trimmed name: calling Tracer twice with
// the same name (modulo surrounding whitespace) returns the same
// instance. A new tracer starts with a disabled no-op writer; the
// factory does not resolve writers itself. An owner such as
// manager.TraceManager sets a single TraceWriter, a FanOutTraceWriter,
// or a no-op writer via SetWriter or Reconfigure.
type Factory struct {
	mu      sync.Mutex
	tracers map[string]*Tracer
	clock   Clock
}

// NewFactory returns an empty Factory using the real wall clock.
func NewFactory() *Factory {
	return NewFactoryWithClock(realClock{})
}

// NewFactoryWithClock returns an empty Factory using clock, for
// deterministic tests.
func NewFactoryWithClock(clock Clock) *Factory {
	return &Factory{tracers: make(map[string]*Tracer), clock: clock}
}

// Tracer returns the Tracer for name, creating it (with a no-op writer)
// if this is the first request for that name.
func (f *Factory) Tracer(name string) *Tracer {
	name = strings.TrimSpace(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tracers[name]; ok {
		return t
	}
	t := newTracer(name, f.clock)
	f.tracers[name] = t
	return t
}

// Reconfigure atomically swaps the writer on every existing tracer for the
// one resolve returns for that tracer's name, without retaining any
// tracer's old writer instance.
func (f *Factory) Reconfigure(resolve func(tracerName string) Writer) {
	f.mu.Lock()
	tracers := make([]*Tracer, 0, len(f.tracers))
	for _, t := range f.tracers {
		tracers = append(tracers, t)
	}
	f.mu.Unlock()

	for _, t := range tracers {
		t.setWriter(resolve(t.name))
	}
}
