package startable_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxlog/fluxlog/internal/gerror"
	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/setuplog"
	"github.com/fluxlog/fluxlog/startable"
)

func TestMachine_StartStop(t *testing.T) {
	var started, stopped bool
	m := startable.New("test", logger.NewNoOpLog(), nil,
		func(ctx context.Context) error { started = true; return nil },
		func() error { stopped = true; return nil },
	)

	require.Equal(t, startable.Unstarted, m.State())
	require.NoError(t, m.Start(context.Background()))
	assert.True(t, started)
	assert.Equal(t, startable.Started, m.State())

	require.NoError(t, m.Stop())
	assert.True(t, stopped)
	assert.Equal(t, startable.Stopped, m.State())
}

func TestMachine_StartFailureRecordsSetupLog(t *testing.T) {
	setup := setuplog.New()
	wantErr := errors.New("boom")
	m := startable.New("thing", logger.NewNoOpLog(), setup.Scoped("thing"),
		func(ctx context.Context) error { return wantErr },
		nil,
	)

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.True(t, gerror.IsStartFailed(err))
	assert.Equal(t, startable.FailedToStart, m.State())
	assert.False(t, setup.IsHealthy())
}

func TestMachine_StopIsIdempotent(t *testing.T) {
	m := startable.New("thing", logger.NewNoOpLog(), nil, nil, nil)
	require.NoError(t, m.Stop())
	require.NoError(t, m.Stop())
	assert.Equal(t, startable.Unstarted, m.State())
}

func TestMachine_DisposeIsTerminal(t *testing.T) {
	m := startable.New("thing", logger.NewNoOpLog(), nil,
		func(ctx context.Context) error { return nil },
		func() error { return nil },
	)
	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Dispose())
	assert.Equal(t, startable.Disposed, m.State())

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.True(t, gerror.IsObjectDisposed(err))
}

func TestMachine_EnsureAutoStartedSwallowsErrors(t *testing.T) {
	setup := setuplog.New()
	m := startable.New("thing", logger.NewNoOpLog(), setup.Scoped("thing"),
		func(ctx context.Context) error { return errors.New("nope") },
		nil,
	)
	assert.NotPanics(t, func() { m.EnsureAutoStarted(context.Background()) })
	assert.Equal(t, startable.FailedToStart, m.State())
	assert.False(t, setup.IsHealthy())
}

func TestMachine_StopOnStopHookRunsOnlyAtNextStop(t *testing.T) {
	m := startable.New("thing", logger.NewNoOpLog(), nil,
		func(ctx context.Context) error { return nil },
		func() error { return nil },
	)
	var mu sync.Mutex
	calls := 0
	m.StopOnStop(func() error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return nil
	})

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop())
	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestMachine_LinkDisposeRunsOnlyOnDispose(t *testing.T) {
	m := startable.New("thing", logger.NewNoOpLog(), nil,
		func(ctx context.Context) error { return nil },
		func() error { return nil },
	)
	calls := 0
	m.LinkDispose(func() error { calls++; return nil })

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop())
	assert.Equal(t, 0, calls)

	require.NoError(t, m.Dispose())
	assert.Equal(t, 1, calls)
}
