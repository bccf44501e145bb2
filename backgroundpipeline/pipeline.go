// Package backgroundpipeline implements the Background Logging Pipeline:
// a foreground-side proxy that enqueues entries onto a bounded per-entry-
// type queue and a single background worker that drains a shared,
// two-priority action queue and applies the entries to an inner
// entrywriter.LogWriter. It is the multi-producer/single-consumer core
// the rest of the library exists to support.
package backgroundpipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/fluxlog/fluxlog/entrywriter"
	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/setuplog"
	"github.com/fluxlog/fluxlog/startable"
)

// DefaultQueueCapacity is the default bounded-queue capacity per entry
// type, per spec §4.3.
const DefaultQueueCapacity = 512

// DefaultStopTimeout is the default bounded wait for stop()/dispose() to
// observe the drain marker before proceeding regardless. The spec leaves
// this as an open question between "intentional best-effort stop" and a
// bug for very slow sinks; it is resolved here as intentional and made
// configurable via Options.StopTimeout.
const DefaultStopTimeout = time.Second

// Options configures a Pipeline.
type Options struct {
	// StopTimeout bounds how long Stop/Dispose wait for the drain marker
	// before returning regardless. Zero selects DefaultStopTimeout.
	StopTimeout time.Duration
	// Clock is the time source used for the worker's idle poll. Tests
	// should inject a *clock.Mock (github.com/benbjohnson/clock).
	Clock clock.Clock
	// Log is the operational logger used for worker diagnostics.
	Log logger.Log
	// Setup receives lifecycle and fault diagnostics (finalizer warnings,
	// start/stop failures).
	Setup setuplog.Sink
}

func (o Options) withDefaults() Options {
	if o.StopTimeout <= 0 {
		o.StopTimeout = DefaultStopTimeout
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Log == nil {
		o.Log = logger.NewNoOpLog()
	}
	return o
}

// core holds everything the background worker goroutine needs. It is
// deliberately not reachable from the worker's closure through the outer
// Pipeline handle, so the Pipeline can be collected (and its finalizer
// run) while the worker is still draining on its way to exit.
type core struct {
	inner     *entrywriter.LogWriter
	actions   *actionQueue
	worker    *worker
	log       logger.Log
	setup     setuplog.Sink
	clock     clock.Clock
	sessionID string
}

// Pipeline is the outer handle returned to callers. Its lifecycle is
// driven by the embedded *startable.Machine. Dropping a Pipeline without
// calling Dispose leaks the worker goroutine until the finalizer runs;
// see watchForLeak.
type Pipeline struct {
	*startable.Machine

	core        *core
	stopTimeout time.Duration
	enabled     *enabledFlag
}

// New wraps inner with a background pipeline: writes through any Proxy
// created against this Pipeline are enqueued and applied by a single
// worker goroutine instead of running on the calling thread.
func New(name string, inner *entrywriter.LogWriter, opts Options) *Pipeline {
	opts = opts.withDefaults()

	c := &core{
		inner:   inner,
		actions: newActionQueue(),
		log:     opts.Log,
		setup:   opts.Setup,
		clock:   opts.Clock,
	}

	p := &Pipeline{
		core:        c,
		stopTimeout: opts.StopTimeout,
		enabled:     newEnabledFlag(),
	}
	p.Machine = startable.New(name, opts.Log, opts.Setup, p.start, p.stop)
	p.watchForLeak()
	return p
}

// IsEnabled reports whether proxies against this pipeline currently
// accept writes. It becomes true the instant Start is issued (before the
// inner writer has actually started on the worker goroutine), so
// producers are never turned away while the worker warms up.
func (p *Pipeline) IsEnabled() bool {
	return p.enabled.get()
}

func (p *Pipeline) start(ctx context.Context) error {
	p.enabled.set(true)
	c := p.core

	// stop() only best-effort-waits for the previous worker to exit (it is
	// bounded by stopTimeout), so a restart following a slow sink's stop
	// must itself wait — unconditionally, no timeout — for that worker to
	// actually finish before a new one is spawned. Without this, two
	// worker goroutines could drain the same action queue concurrently.
	if c.worker != nil {
		<-c.worker.Done()
	}

	c.sessionID = uuid.New().String()
	c.worker = newWorker(c.actions, c.clock, c.log, func() bool {
		return p.Machine.State() == startable.Stopping
	})
	go c.worker.run()

	startErr := make(chan error, 1)
	c.actions.postNormal(func() {
		startErr <- c.inner.Start(ctx)
	})
	select {
	case err := <-startErr:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) stop() error {
	p.enabled.set(false)
	c := p.core

	stopErr := make(chan error, 1)
	c.actions.postNormal(func() {
		stopErr <- c.inner.Stop()
	})

	marker := make(chan struct{})
	c.actions.postNormal(func() { close(marker) })

	timer := time.NewTimer(p.stopTimeout)
	defer timer.Stop()
	select {
	case <-marker:
	case <-timer.C:
		// Best-effort stop: the worker keeps draining on its own after
		// this point, per spec's resolved Open Question.
	}

	// This wait is also best-effort and bounded, matching the marker wait
	// above: a slow sink can make stop() return while the worker is still
	// draining. start()'s own unconditional wait on this same worker is
	// what guarantees a subsequent Restart never runs two workers at once.
	select {
	case <-c.worker.Done():
	case <-time.After(p.stopTimeout):
	}

	select {
	case err := <-stopErr:
		return err
	default:
		return nil
	}
}

// watchForLeak arranges for a leaked Pipeline (one whose owner dropped
// every reference without calling Dispose) to still flush on collection.
// The finalizer is attached to the outer Pipeline handle, not to
// anything reachable from the worker goroutine's own closure, so the
// worker does not itself keep the Pipeline alive: p.core's worker only
// closes over c (the core), never p.
func (p *Pipeline) watchForLeak() {
	runtime.SetFinalizer(p, func(leaked *Pipeline) {
		if leaked.Machine.State() == startable.Disposed {
			return
		}
		if leaked.core.setup != nil {
			leaked.core.setup.Record("BackgroundPipeline", setuplog.SeverityError,
				fmt.Sprintf("In finalizer for session %s — forgot to dispose?", leaked.core.sessionID), nil)
		}
		_ = leaked.Dispose()
	})
}

// Inner returns the wrapped LogWriter, for Proxy construction.
func (p *Pipeline) Inner() *entrywriter.LogWriter {
	return p.core.inner
}

// SessionID identifies the current run of the worker goroutine. It is
// regenerated on every Start/Restart so diagnostics recorded before and
// after a restart can be told apart. Empty before the pipeline's first
// Start.
func (p *Pipeline) SessionID() string {
	return p.core.sessionID
}
