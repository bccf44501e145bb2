package backgroundpipeline

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/fluxlog/fluxlog/internal/logger"
)

// spinInterval is how often the worker wakes to re-check for stop, when
// both action queues are empty. Grounded on the teacher's
// LogFileBufferReader idle-poll loop (time.After on an idleInterval).
const spinInterval = 5 * time.Millisecond

// housekeepingTicks is how many spin ticks elapse between queue-depth
// diagnostics, roughly once per second at spinInterval's default.
const housekeepingTicks = 200

// worker is the single background drain thread owned by a Pipeline. It
// preferentially executes priority actions, falls back to normal
// actions, and exits only once both queues are observed empty and the
// owning pipeline has entered Stopping — re-checked in that order each
// time it wakes, per the spec's "test emptiness and then state" note, to
// avoid races that would cause a spurious early or late exit.
type worker struct {
	actions  *actionQueue
	clock    clock.Clock
	log      logger.Log
	stopping func() bool
	done     chan struct{}
	ticks    int
}

func newWorker(actions *actionQueue, clk clock.Clock, log logger.Log, stopping func() bool) *worker {
	return &worker{
		actions:  actions,
		clock:    clk,
		log:      log,
		stopping: stopping,
		done:     make(chan struct{}),
	}
}

// run drains the action queues until told to stop. It never terminates
// due to an action's own fault: each action is executed inside a
// recovering wrapper.
func (w *worker) run() {
	defer close(w.done)
	ticker := w.clock.Ticker(spinInterval)
	defer ticker.Stop()

	for {
		if w.runPriority() {
			continue
		}
		select {
		case action := <-w.actions.priority:
			w.execute(action)
		case action := <-w.actions.normal:
			w.execute(action)
		case <-ticker.C:
			if w.actions.empty() && w.stopping() {
				return
			}
			w.ticks++
			if w.ticks >= housekeepingTicks {
				w.ticks = 0
				w.postQueueDepthDiagnostic()
			}
		}
	}
}

// runPriority drains any priority actions available right now without
// blocking, so priority work always preempts normal work at every
// dispatch boundary.
func (w *worker) runPriority() bool {
	select {
	case action := <-w.actions.priority:
		w.execute(action)
		return true
	default:
		return false
	}
}

func (w *worker) execute(action func()) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Errorf("background worker action panicked: %v", r)
		}
	}()
	action()
}

// Done returns a channel closed once run has returned.
func (w *worker) Done() <-chan struct{} {
	return w.done
}

// postQueueDepthDiagnostic submits a low-priority housekeeping action that
// logs the action queues' current depth. It uses postDelayed rather than
// postNormal because this is diagnostic housekeeping, not write traffic:
// it should never jump ahead of, or even contend at submission time with,
// entries producers are enqueuing right now.
func (w *worker) postQueueDepthDiagnostic() {
	w.actions.postDelayed(func() {
		w.log.Debugf("background pipeline queue depth: priority=%d normal=%d",
			len(w.actions.priority), len(w.actions.normal))
	})
}
