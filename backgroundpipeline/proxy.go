package backgroundpipeline

import (
	"context"
	"time"

	"github.com/fluxlog/fluxlog/entrywriter"
	"github.com/fluxlog/fluxlog/internal/gerror"
	"github.com/fluxlog/fluxlog/startable"
)

// Proxy is the foreground-side facade for entries of type T flowing
// through a Pipeline: Write enqueues onto a bounded per-type queue and
// posts a dequeue-and-write action onto the pipeline's shared action
// queue, instead of writing synchronously on the calling goroutine.
//
// A Pipeline may host many Proxy[T] instances (one per entry type
// registered on the wrapped LogWriter), all sharing the same worker and
// action queue but each with its own bounded queue, its own Startable
// lifecycle, and its own disposed flag — so disposing one proxy early
// never disturbs its siblings.
type Proxy[T any] struct {
	*startable.Machine

	pipeline *Pipeline
	inner    entrywriter.EntryWriter[T]
	queue    *boundedQueue[T]
	disposed *enabledFlag
}

// NewProxy constructs a Proxy for entry type T against pipeline. capacity
// is the bounded queue's size; zero selects DefaultQueueCapacity. Fails
// with gerror.ErrCodeKeyNotFound if the pipeline's inner LogWriter has no
// entry writer registered for T.
func NewProxy[T any](name string, pipeline *Pipeline, capacity int) (*Proxy[T], error) {
	inner, ok := entrywriter.TryGetEntryWriter[T](pipeline.Inner())
	if !ok {
		return nil, gerror.NewErrKeyNotFound("no entry writer registered for this type on " + pipeline.Inner().Name)
	}
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}

	p := &Proxy[T]{
		pipeline: pipeline,
		inner:    inner,
		queue:    newBoundedQueue[T](capacity),
		disposed: newEnabledFlag(),
	}
	p.Machine = startable.New(name, pipeline.core.log, pipeline.core.setup, p.start, p.stop)
	p.Machine.LinkDispose(func() error {
		p.disposed.set(true)
		return nil
	})
	return p, nil
}

// IsEnabled reports whether this proxy currently accepts writes: it must
// not be disposed, the owning pipeline must be enabled, and this proxy's
// own lifecycle must be Starting, Started or Restarting — true the instant
// Start is issued, before the worker has actually warmed up, per spec.
func (p *Proxy[T]) IsEnabled() bool {
	if p.disposed.get() || !p.pipeline.IsEnabled() {
		return false
	}
	switch p.Machine.State() {
	case startable.Starting, startable.Started, startable.Restarting:
		return true
	default:
		return false
	}
}

// Write enqueues entry for background delivery. If the proxy is not
// currently enabled the entry is dropped silently, never returning an
// error (per the Entry Writer contract: write must not throw).
func (p *Proxy[T]) Write(entry *T) {
	if !p.IsEnabled() {
		return
	}
	p.queue.push(*entry)
	p.pipeline.core.actions.postNormal(func() {
		e, ok := p.queue.pop()
		if ok {
			p.inner.Write(&e)
		}
		p.queue.release()
	})
}

func (p *Proxy[T]) start(ctx context.Context) error {
	return nil
}

// stop clears is_enabled (via Machine's own state leaving Started),
// acquires one permit so the stop marker is ordered after every write
// enqueued before Stop returns to the caller, then waits on that marker
// bounded by the pipeline's configured stop timeout.
func (p *Proxy[T]) stop() error {
	p.queue.acquirePermit()
	marker := make(chan struct{})
	p.pipeline.core.actions.postNormal(func() {
		p.queue.release()
		close(marker)
	})
	select {
	case <-marker:
	case <-time.After(p.pipeline.stopTimeout):
	}
	return nil
}
