package backgroundpipeline_test

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxlog/fluxlog/backgroundpipeline"
	"github.com/fluxlog/fluxlog/entrywriter"
	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/setuplog"
)

type recordingSink struct {
	mu      sync.Mutex
	count   int
	lines   []string
	delay   time.Duration
	enabled bool
}

func newRecordingSink() *recordingSink { return &recordingSink{enabled: true} }

func (s *recordingSink) IsEnabled() bool { return s.enabled }

func (s *recordingSink) Write(entry *string) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.lines = append(s.lines, *entry)
}

func (s *recordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func newTestPipeline(t *testing.T, sink *recordingSink) (*backgroundpipeline.Pipeline, *entrywriter.LogWriter) {
	t.Helper()
	inner := entrywriter.NewLogWriter("inner", true, logger.NewNoOpLog(), nil)
	entrywriter.RegisterOn[string](inner, sink)
	p := backgroundpipeline.New("pipeline", inner, backgroundpipeline.Options{
		Log:         logger.NewNoOpLog(),
		StopTimeout: time.Second,
	})
	return p, inner
}

func TestPipeline_NoLossOnNormalDispose(t *testing.T) {
	sink := newRecordingSink()
	p, _ := newTestPipeline(t, sink)
	require.NoError(t, p.Start(context.Background()))

	proxy, err := backgroundpipeline.NewProxy[string]("proxy", p, 8)
	require.NoError(t, err)
	require.NoError(t, proxy.Start(context.Background()))

	const total = 100
	for i := 0; i < total; i++ {
		s := "entry"
		proxy.Write(&s)
	}

	require.NoError(t, p.Dispose())
	assert.Equal(t, total, sink.Count())
}

func TestPipeline_RestartCorrectness(t *testing.T) {
	sink := newRecordingSink()
	p, _ := newTestPipeline(t, sink)
	require.NoError(t, p.Start(context.Background()))

	proxy, err := backgroundpipeline.NewProxy[string]("proxy", p, 8)
	require.NoError(t, err)
	require.NoError(t, proxy.Start(context.Background()))

	s := "before-stop"
	proxy.Write(&s)
	require.NoError(t, proxy.Stop())

	dropped := "dropped"
	proxy.Write(&dropped) // stopped; must be silently dropped

	require.NoError(t, proxy.Start(context.Background()))
	after := "after-restart"
	proxy.Write(&after)

	require.NoError(t, p.Dispose())

	assert.Equal(t, 2, sink.Count())
	assert.Contains(t, sink.lines, "before-stop")
	assert.Contains(t, sink.lines, "after-restart")
	assert.NotContains(t, sink.lines, "dropped")

	err = proxy.Start(context.Background())
	// the pipeline is disposed; proxy itself is independent, but writes
	// after the pipeline is disposed must still be no-ops.
	_ = err
	one := "post-dispose"
	assert.NotPanics(t, func() { proxy.Write(&one) })
}

func TestPipeline_EarlyProxyDisposeDoesNotDisruptSiblings(t *testing.T) {
	sinkA := newRecordingSink()
	sinkB := newRecordingSink()
	inner := entrywriter.NewLogWriter("inner", true, logger.NewNoOpLog(), nil)
	entrywriter.RegisterOn[string](inner, sinkA)

	type other = struct{ V string }
	otherSink := &otherRecordingSink{}
	entrywriter.RegisterOn[other](inner, otherSink)

	p := backgroundpipeline.New("pipeline", inner, backgroundpipeline.Options{Log: logger.NewNoOpLog()})
	require.NoError(t, p.Start(context.Background()))

	proxyA, err := backgroundpipeline.NewProxy[string]("proxyA", p, 8)
	require.NoError(t, err)
	require.NoError(t, proxyA.Start(context.Background()))

	proxyB, err := backgroundpipeline.NewProxy[other]("proxyB", p, 8)
	require.NoError(t, err)
	require.NoError(t, proxyB.Start(context.Background()))

	require.NoError(t, proxyA.Dispose())

	s := "after-a-disposed"
	proxyA.Write(&s)
	o := other{V: "still-alive"}
	proxyB.Write(&o)

	require.NoError(t, p.Dispose())

	assert.Equal(t, 0, sinkA.Count())
	assert.Equal(t, 1, otherSink.Count())
	_ = sinkB
}

type otherRecordingSink struct {
	mu    sync.Mutex
	count int
}

func (s *otherRecordingSink) IsEnabled() bool { return true }
func (s *otherRecordingSink) Write(entry *struct{ V string }) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
}
func (s *otherRecordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func TestPipeline_QueueBackpressure(t *testing.T) {
	sink := newRecordingSink()
	sink.delay = 20 * time.Millisecond
	p, _ := newTestPipeline(t, sink)
	require.NoError(t, p.Start(context.Background()))

	const capacity = 4
	proxy, err := backgroundpipeline.NewProxy[string]("proxy", p, capacity)
	require.NoError(t, err)
	require.NoError(t, proxy.Start(context.Background()))

	start := time.Now()
	for i := 0; i < capacity; i++ {
		s := "fast"
		proxy.Write(&s)
	}
	fastElapsed := time.Since(start)
	assert.Less(t, fastElapsed, sink.delay)

	start = time.Now()
	s := "blocks"
	proxy.Write(&s)
	blockedElapsed := time.Since(start)
	assert.GreaterOrEqual(t, blockedElapsed, sink.delay/2)

	require.NoError(t, p.Dispose())
	assert.Equal(t, capacity+1, sink.Count())
}

func TestPipeline_ExceptionIsolation(t *testing.T) {
	var writes atomic.Int32
	throwing := entrywriter.Func[string](func(entry *string) {
		writes.Add(1)
		panic("sink always fails")
	})
	inner := entrywriter.NewLogWriter("inner", true, logger.NewNoOpLog(), nil)
	entrywriter.RegisterOn[string](inner, throwing)

	setup := setuplog.New()
	p := backgroundpipeline.New("pipeline", inner, backgroundpipeline.Options{
		Log:   logger.NewNoOpLog(),
		Setup: setup.Scoped("pipeline"),
	})
	require.NoError(t, p.Start(context.Background()))
	proxy, err := backgroundpipeline.NewProxy[string]("proxy", p, 8)
	require.NoError(t, err)
	require.NoError(t, proxy.Start(context.Background()))

	for i := 0; i < 5; i++ {
		s := "x"
		proxy.Write(&s)
	}
	require.NoError(t, p.Dispose())

	assert.Equal(t, int32(5), writes.Load())
}

func TestPipeline_FinalizerFlushesOnLeak(t *testing.T) {
	if testing.Short() {
		t.Skip("finalizer timing test")
	}
	sink := newRecordingSink()
	inner := entrywriter.NewLogWriter("inner", true, logger.NewNoOpLog(), nil)
	entrywriter.RegisterOn[string](inner, sink)

	setup := setuplog.New()

	func() {
		p := backgroundpipeline.New("leaked", inner, backgroundpipeline.Options{
			Log:   logger.NewNoOpLog(),
			Setup: setup.Scoped("leaked"),
		})
		require.NoError(t, p.Start(context.Background()))
		proxy, err := backgroundpipeline.NewProxy[string]("proxy", p, 32)
		require.NoError(t, err)
		require.NoError(t, proxy.Start(context.Background()))
		for i := 0; i < 25; i++ {
			s := "leaked-entry"
			proxy.Write(&s)
		}
		// p and proxy go out of scope here without Dispose.
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(50 * time.Millisecond)
		if sink.Count() == 25 {
			break
		}
	}

	assert.Equal(t, 25, sink.Count())
	found := false
	for _, e := range setup.Entries() {
		if strings.HasPrefix(e.Message, "In finalizer") && strings.Contains(e.Message, "forgot to dispose?") {
			found = true
		}
	}
	assert.True(t, found, "expected a finalizer warning in the setup log")
}
