package manager_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxlog/fluxlog/entrywriter"
	"github.com/fluxlog/fluxlog/internal/gerror"
	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/manager"
	"github.com/fluxlog/fluxlog/setuplog"
	"github.com/fluxlog/fluxlog/tracing"
)

type memorySink struct {
	mu    sync.Mutex
	lines []string
}

func (s *memorySink) IsEnabled() bool { return true }
func (s *memorySink) Write(e *tracing.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, e.Message)
}
func (s *memorySink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func buildWriter(sink *memorySink) manager.BuildFunc {
	return func(log logger.Log, setup setuplog.Sink) (*entrywriter.LogWriter, error) {
		lw := entrywriter.NewLogWriter("console", true, log, setup)
		entrywriter.RegisterOn[tracing.Entry](lw, sink)
		return lw, nil
	}
}

func TestLogManager_GetLogWriterIsCachedAndHealthy(t *testing.T) {
	sink := &memorySink{}
	lm := manager.NewLogManager(manager.LogManagerConfig{
		Writers: []manager.LogWriterConfig{
			{Name: "console", Build: buildWriter(sink)},
		},
	}, logger.NewNoOpLog())

	w1, err := lm.GetLogWriter("console")
	require.NoError(t, err)
	w2, err := lm.GetLogWriter("console")
	require.NoError(t, err)
	assert.Same(t, w1, w2)
	assert.True(t, lm.IsHealthy())

	require.NoError(t, lm.Stop())
}

func TestLogManager_UnknownWriterIsKeyNotFound(t *testing.T) {
	lm := manager.NewLogManager(manager.LogManagerConfig{}, logger.NewNoOpLog())
	_, err := lm.GetLogWriter("nope")
	require.Error(t, err)
	assert.True(t, gerror.IsKeyNotFound(err))
}

func TestTraceManager_RoutesToConfiguredWriter(t *testing.T) {
	sink := &memorySink{}
	lm := manager.NewLogManager(manager.LogManagerConfig{
		Writers: []manager.LogWriterConfig{
			{Name: "console", Build: buildWriter(sink)},
		},
	}, logger.NewNoOpLog())

	tm := manager.NewTraceManager(lm, []manager.TraceWriterConfig{
		{
			LogWriterName: "console",
			Switches: map[string]tracing.Switch{
				"": tracing.ThresholdSwitch{Threshold: tracing.Info},
			},
		},
	})

	tr, err := tm.Tracer("my.Component")
	require.NoError(t, err)

	tr.Info("hello")
	tr.Debug("filtered out")

	assert.Equal(t, 1, sink.Count())
	require.NoError(t, lm.Stop())
}

func TestLogManager_BackgroundLoggingRoutesThroughPipeline(t *testing.T) {
	sink := &memorySink{}
	lm := manager.NewLogManager(manager.LogManagerConfig{
		Writers: []manager.LogWriterConfig{
			{Name: "console", BackgroundLogging: true, Build: buildWriter(sink)},
		},
	}, logger.NewNoOpLog())

	writer, err := manager.GetEntryWriter[tracing.Entry](lm, "console")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		writer.Write(&tracing.Entry{Message: "bg"})
	}

	require.NoError(t, lm.Stop())
	assert.Equal(t, 10, sink.Count())
}
