package startable

import (
	"context"
	"sync"

	"github.com/fluxlog/fluxlog/internal/gerror"
	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/setuplog"
)

// StartFunc performs a component's start-up work. It receives a context
// that is cancelled when Stop is called, so long-running start work can
// observe shutdown requests.
type StartFunc func(ctx context.Context) error

// StopFunc performs a component's shutdown work.
type StopFunc func() error

// Listener is notified of every state transition.
type Listener func(from, to State)

// Machine is the reusable startable lifecycle primitive. The zero value
// is not usable; construct with New.
type Machine struct {
	mu    sync.Mutex
	name  string
	state State
	log   logger.Log
	setup setuplog.Sink

	startFn StartFunc
	stopFn  StopFunc

	ctx       context.Context
	ctxCancel context.CancelFunc

	listeners  []Listener
	stopHooks  []func() error // cleared after every Stop
	disposeHooks []func() error
}

// New constructs a Machine named name (used in log messages and errors).
// startFn and stopFn may be nil for components with no start/stop work of
// their own (e.g. a LogWriter with no background resources).
func New(name string, log logger.Log, setup setuplog.Sink, startFn StartFunc, stopFn StopFunc) *Machine {
	if log == nil {
		log = logger.NewNoOpLog()
	}
	return &Machine{
		name:    name,
		log:     log,
		setup:   setup,
		startFn: startFn,
		stopFn:  stopFn,
	}
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnStateChange registers a listener invoked after every transition. The
// listener is called without the Machine's internal lock held, so it may
// safely call back into the Machine.
func (m *Machine) OnStateChange(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Machine) setState(from, to State) {
	m.state = to
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	go func() {
		for _, l := range listeners {
			l(from, to)
		}
	}()
}

// Start attempts to bring the component up. From Unstarted, Stopped, or
// FailedToStart it runs startFn and moves to Started or FailedToStart.
// From Started it re-runs startFn via the Restarting state (a no-op start
// function simply restores Started). From any Disposed* state it fails
// with gerror.ErrCodeObjectDisposed.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state == Disposing || m.state == Disposed {
		m.mu.Unlock()
		return gerror.NewErrObjectDisposed(m.name)
	}
	restart, ok := m.state.canStart()
	if !ok {
		m.mu.Unlock()
		if m.state == Started || m.state == Starting || m.state == Restarting {
			return nil // already up; Start is idempotent while running
		}
		return gerror.NewErrAlreadyStarted(m.name)
	}
	from := m.state
	next := Starting
	if restart {
		next = Restarting
	}
	m.setState(from, next)
	runCtx, cancel := context.WithCancel(ctx)
	m.ctx = runCtx
	m.ctxCancel = cancel
	startFn := m.startFn
	m.mu.Unlock()

	m.log.Infof("%s: starting", m.name)
	var err error
	if startFn != nil {
		err = startFn(runCtx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.setState(next, FailedToStart)
		wrapped := gerror.NewErrStartFailed(m.name, err)
		if m.setup != nil {
			m.setup.Record(m.name, setuplog.SeverityError, wrapped.Error(), err)
		}
		return wrapped
	}
	m.setState(next, Started)
	m.log.Infof("%s: started", m.name)
	if m.setup != nil {
		m.setup.Record(m.name, setuplog.SeverityInfo, m.name+" started", nil)
	}
	return nil
}

// EnsureAutoStarted attempts Start exactly once from Unstarted. Any
// failure is recorded to the setup log and swallowed: callers relying on
// lazily-started components must not be disrupted by a failed auto-start.
func (m *Machine) EnsureAutoStarted(ctx context.Context) {
	m.mu.Lock()
	if m.state != Unstarted {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	if err := m.Start(ctx); err != nil && m.setup != nil {
		m.setup.Record(m.name, setuplog.SeverityError, "auto-start failed", err)
	}
}

// Stop idempotently brings the component down, running any registered
// stop-on-stop hooks after stopFn returns, whether or not it failed. It is a no-op from Unstarted,
// Stopped, and Disposed.
func (m *Machine) Stop() error {
	m.mu.Lock()
	if !m.state.canStop() {
		m.mu.Unlock()
		return nil
	}
	from := m.state
	m.setState(from, Stopping)
	if m.ctxCancel != nil {
		m.ctxCancel()
	}
	stopFn := m.stopFn
	hooks := m.stopHooks
	m.stopHooks = nil
	m.mu.Unlock()

	m.log.Infof("%s: stopping", m.name)
	var err error
	if stopFn != nil {
		err = stopFn()
	}
	for _, hook := range hooks {
		if hookErr := hook(); hookErr != nil && err == nil {
			err = hookErr
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.setState(Stopping, FailedToStop)
		wrapped := gerror.NewErrStopFailed(m.name, err)
		if m.setup != nil {
			m.setup.Record(m.name, setuplog.SeverityError, wrapped.Error(), err)
		}
		return wrapped
	}
	m.setState(Stopping, Stopped)
	m.log.Infof("%s: stopped", m.name)
	if m.setup != nil {
		m.setup.Record(m.name, setuplog.SeverityInfo, m.name+" stopped", nil)
	}
	return nil
}

// Dispose is terminal: after Dispose returns, Start always fails with
// ObjectDisposed and Write-style operations on the owning component must
// treat themselves as no-ops. Dispose first performs a Stop (ignoring the
// "already stopped" no-op case) and then runs linked-dispose hooks.
func (m *Machine) Dispose() error {
	m.mu.Lock()
	if m.state == Disposing || m.state == Disposed {
		m.mu.Unlock()
		return nil
	}
	if !m.state.canDispose() {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	_ = m.Stop()

	m.mu.Lock()
	if m.state == Disposing || m.state == Disposed {
		m.mu.Unlock()
		return nil
	}
	from := m.state
	m.setState(from, Disposing)
	hooks := m.disposeHooks
	m.disposeHooks = nil
	m.mu.Unlock()

	for _, hook := range hooks {
		if err := hook(); err != nil && m.setup != nil {
			m.setup.Record(m.name, setuplog.SeverityError, "dispose hook failed", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.setState(Disposing, Disposed)
	if m.setup != nil {
		m.setup.Record(m.name, setuplog.SeverityInfo, m.name+" disposed", nil)
	}
	return nil
}

// StopOnStop registers a hook that runs once, at the end of the next Stop,
// and is then discarded. Use for resources that must be recreated on restart.
func (m *Machine) StopOnStop(hook func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopHooks = append(m.stopHooks, hook)
}

// LinkDispose registers a hook that runs only when the component itself
// is disposed, not on every Stop. Use for resources whose lifetime is
// bound to the component's own lifetime rather than its started/stopped
// cycling.
func (m *Machine) LinkDispose(hook func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposeHooks = append(m.disposeHooks, hook)
}

// Context returns the context active for the current start cycle; it is
// cancelled when Stop is called. Returns context.Background() if the
// component has never been started.
func (m *Machine) Context() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}
