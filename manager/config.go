// Package manager implements the top-level Log Manager and Trace
// Manager orchestrators: they own configuration, apply initializers
// (ordered decorators), construct log writers lazily, and track started
// components for orderly, fault-tolerant shutdown.
package manager

import (
	"time"

	"github.com/fluxlog/fluxlog/entrywriter"
	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/setuplog"
	"github.com/fluxlog/fluxlog/tracing"
)

// BuildFunc constructs the concrete entry writers for a log writer.
// Concrete sinks are out of scope for this library (spec.md Non-goals);
// callers supply this to wire in their own file/console/network sinks.
type BuildFunc func(log logger.Log, setup setuplog.Sink) (*entrywriter.LogWriter, error)

// LogWriterConfig describes one named log writer the manager can
// construct and, optionally, wrap in a background pipeline.
type LogWriterConfig struct {
	Name string
	// BackgroundLogging, when true, wraps the constructed writer in a
	// backgroundpipeline.Pipeline at start time.
	BackgroundLogging bool
	// QueueCapacity is the per-entry-type bounded queue size used when
	// BackgroundLogging is true. Zero selects
	// backgroundpipeline.DefaultQueueCapacity.
	QueueCapacity int
	// StopTimeout bounds the background pipeline's drain wait. Zero
	// selects backgroundpipeline.DefaultStopTimeout.
	StopTimeout time.Duration
	// Build constructs the writer's entry writers. Required.
	Build BuildFunc
}

// TraceWriterConfig pairs a SwitchSet with the name of a LogWriterConfig
// entries of this trace source should be routed to once admitted.
type TraceWriterConfig struct {
	LogWriterName string
	Switches      map[string]tracing.Switch
}

// LogManagerConfig is mutated freely before Start and treated as frozen
// while started.
type LogManagerConfig struct {
	Writers []LogWriterConfig
	Traces  []TraceWriterConfig
}

// WriterConfig looks up a named LogWriterConfig.
func (c LogManagerConfig) WriterConfig(name string) (LogWriterConfig, bool) {
	for _, w := range c.Writers {
		if w.Name == name {
			return w, true
		}
	}
	return LogWriterConfig{}, false
}
