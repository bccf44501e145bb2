package manager

import (
	"github.com/fluxlog/fluxlog/tracing"
)

// TraceManager layers trace routing on top of a LogManager: it owns a
// TraceWriterConfig per target log writer, a SwitchSet per target, and a
// tracer cache (via tracing.Factory). It shares the LogManager's setup
// log and startup state rather than keeping its own.
type TraceManager struct {
	lm      *LogManager
	cfgs    []TraceWriterConfig
	factory *tracing.Factory
}

// NewTraceManager builds a TraceManager routing through lm according to
// cfgs — one entry per target log writer, each with its own SwitchSet.
func NewTraceManager(lm *LogManager, cfgs []TraceWriterConfig) *TraceManager {
	tm := &TraceManager{
		lm:      lm,
		cfgs:    cfgs,
		factory: tracing.NewFactory(),
	}
	return tm
}

// Tracer returns the named Tracer, resolving its writer across every
// configured target (a single TraceWriter if one target is configured, a
// FanOutTraceWriter if several). The writer is resolved again and set on
// the tracer on every call, not only the first time a name is requested.
func (tm *TraceManager) Tracer(name string) (*tracing.Tracer, error) {
	t := tm.factory.Tracer(name)
	writer, err := tm.resolve(t.Name())
	if err != nil {
		return nil, err
	}
	t.SetWriter(writer)
	return t, nil
}

// Reconfigure re-resolves and atomically swaps the writer on every
// previously-created tracer, used when the underlying LogWriterConfig
// set or its switches change after tracers have already been handed out.
func (tm *TraceManager) Reconfigure() {
	tm.factory.Reconfigure(func(name string) tracing.Writer {
		w, err := tm.resolve(name)
		if err != nil {
			return noOpTraceWriter{}
		}
		return w
	})
}

func (tm *TraceManager) resolve(name string) (tracing.Writer, error) {
	var writers []*tracing.TraceWriter
	for _, cfg := range tm.cfgs {
		set := tracing.NewSwitchSet(cfg.Switches)
		sw := set.SwitchFor(name)
		inner, err := GetEntryWriter[tracing.Entry](tm.lm, cfg.LogWriterName)
		if err != nil {
			return nil, err
		}
		writers = append(writers, tracing.NewTraceWriter(sw, inner, tm.lm.SetupLog().Scoped(cfg.LogWriterName)))
	}
	switch len(writers) {
	case 0:
		return noOpTraceWriter{}, nil
	case 1:
		return writers[0], nil
	default:
		return tracing.NewFanOutTraceWriter(writers...), nil
	}
}

// Reset restores the manager to a fresh diagnostic state: the setup log
// is cleared and the tracer cache is dropped, matching spec Testable
// Property 10 (configuration reset round-trip). The underlying LogManager
// and its writers are left running; callers that want a full reset
// should Stop the LogManager first.
func (tm *TraceManager) Reset() {
	tm.lm.SetupLog().Reset()
	tm.factory = tracing.NewFactory()
}

// IsHealthy delegates to the underlying LogManager.
func (tm *TraceManager) IsHealthy() bool {
	return tm.lm.IsHealthy()
}

type noOpTraceWriter struct{}

func (noOpTraceWriter) IsEnabled(string, tracing.Level) bool { return false }
func (noOpTraceWriter) Write(*tracing.Entry)                 {}

var _ tracing.Writer = (*tracing.TraceWriter)(nil)
