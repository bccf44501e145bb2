package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fluxlog/fluxlog/entrywriter"
	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/manager"
	"github.com/fluxlog/fluxlog/setuplog"
	"github.com/fluxlog/fluxlog/tracing"
)

// fileWriterConfig mirrors manager.LogWriterConfig's operator-facing
// fields. Concrete sinks are out of scope for this library (spec.md
// Non-goals), so check wires every configured writer to a discard
// EntryWriter[tracing.Entry] — enough to validate the lifecycle wiring
// and the trace-switch configuration end to end without pulling in a
// real sink implementation.
type fileWriterConfig struct {
	Name              string `mapstructure:"name"`
	BackgroundLogging bool   `mapstructure:"background_logging"`
	QueueCapacity     int    `mapstructure:"queue_capacity"`
}

type fileTraceConfig struct {
	LogWriter string            `mapstructure:"log_writer"`
	Switches  map[string]string `mapstructure:"switches"`
}

type fileConfig struct {
	Writers []fileWriterConfig `mapstructure:"writers"`
	Traces  []fileTraceConfig  `mapstructure:"traces"`
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the configured log/trace managers, report health, then stop them",
	RunE:  runCheck,
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

var levelNames = map[string]tracing.Level{
	"verbose": tracing.Verbose,
	"debug":   tracing.Debug,
	"info":    tracing.Info,
	"warn":    tracing.Warn,
	"error":   tracing.Error,
	"severe":  tracing.Severe,
}

func discardWriterBuild(name string) manager.BuildFunc {
	return func(log logger.Log, setup setuplog.Sink) (*entrywriter.LogWriter, error) {
		lw := entrywriter.NewLogWriter(name, true, log, setup)
		entrywriter.RegisterOn[tracing.Entry](lw, entrywriter.NoOp[tracing.Entry]())
		return lw, nil
	}
}

func buildSwitches(raw map[string]string) (map[string]tracing.Switch, error) {
	out := make(map[string]tracing.Switch, len(raw))
	for prefix, levelName := range raw {
		level, ok := levelNames[levelName]
		if !ok {
			return nil, fmt.Errorf("unknown trace level %q for prefix %q", levelName, prefix)
		}
		out[prefix] = tracing.ThresholdSwitch{Threshold: level}
	}
	return out, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	var fc fileConfig
	if err := viper.Unmarshal(&fc); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	cfg := manager.LogManagerConfig{}
	for _, w := range fc.Writers {
		cfg.Writers = append(cfg.Writers, manager.LogWriterConfig{
			Name:              w.Name,
			BackgroundLogging: w.BackgroundLogging,
			QueueCapacity:     w.QueueCapacity,
			Build:             discardWriterBuild(w.Name),
		})
	}
	for _, t := range fc.Traces {
		switches, err := buildSwitches(t.Switches)
		if err != nil {
			return err
		}
		cfg.Traces = append(cfg.Traces, manager.TraceWriterConfig{
			LogWriterName: t.LogWriter,
			Switches:      switches,
		})
	}

	factory, err := logFactory()
	if err != nil {
		return err
	}
	log := factory("fluxlogctl")
	lm := manager.NewLogManager(cfg, log)
	tm := manager.NewTraceManager(lm, cfg.Traces)

	for _, w := range cfg.Writers {
		if _, err := lm.GetLogWriter(w.Name); err != nil {
			return fmt.Errorf("starting writer %q: %w", w.Name, err)
		}
	}
	for _, t := range cfg.Traces {
		if _, err := tm.Tracer(t.LogWriterName); err != nil {
			return fmt.Errorf("resolving tracer for %q: %w", t.LogWriterName, err)
		}
	}

	healthy := lm.IsHealthy()
	if err := lm.Stop(); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "stop reported errors: %v\n", err)
	}

	if healthy {
		fmt.Fprintln(cmd.OutOrStdout(), "OK: configuration loaded and started healthy")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "UNHEALTHY: see setup log entries above Info severity")
	return fmt.Errorf("configuration started unhealthy")
}

// logFactory builds fluxlogctl's own operational log factory: to stdout by
// default, or appending to Global.LogFilePath when --log-file is set.
func logFactory() (logger.Factory, error) {
	registry := mustRegistry()
	if Global.LogFilePath == "" {
		return logger.NewStdoutFactory(registry), nil
	}
	factory, err := logger.NewFileFactory(registry, Global.LogFilePath)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", Global.LogFilePath, err)
	}
	return factory, nil
}

func mustRegistry() *logger.Registry {
	var spec logger.LevelSpec
	if Global.Debug {
		spec = "=debug"
	}
	r, err := logger.NewRegistry(spec)
	if err != nil {
		fatalf("building default log registry: %v", err)
	}
	return r
}
