// Package logger provides fluxlog's own operational logging: the diagnostics
// fluxlog's packages print about themselves while they run. This is distinct
// from setuplog.Log, which is a user-facing feature of the library (the
// append-only diagnostic channel described by the Setup Log component).
package logger

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Log is the logging surface used internally by fluxlog packages.
type Log interface {
	WithField(name string, value interface{}) Log
	WithFields(fields Fields) Log
	Trace(args ...interface{})
	Tracef(msg string, args ...interface{})
	Debug(args ...interface{})
	Debugf(msg string, args ...interface{})
	Info(args ...interface{})
	Infof(msg string, args ...interface{})
	Warn(args ...interface{})
	Warnf(msg string, args ...interface{})
	Error(args ...interface{})
	Errorf(msg string, args ...interface{})
	Panic(args ...interface{})
	Panicf(msg string, args ...interface{})
}

// Fields is a set of keys/values to include in a structured log message.
type Fields map[string]interface{}

// Factory produces a Log scoped to the named subsystem (e.g. "BackgroundPipeline",
// "TraceManager").
type Factory func(subsystem string) Log

// logrusLog adapts a *logrus.Entry to the Log interface.
type logrusLog struct {
	*logrus.Entry
}

func (l *logrusLog) WithField(name string, value interface{}) Log {
	return &logrusLog{Entry: l.Entry.WithField(name, value)}
}

func (l *logrusLog) WithFields(fields Fields) Log {
	return &logrusLog{Entry: l.Entry.WithFields(logrus.Fields(fields))}
}

// NewFactory builds a Factory that writes formatted logrus entries to output,
// using registry to look up the configured level for each subsystem.
func NewFactory(output io.Writer, formatter logrus.Formatter, registry *Registry) Factory {
	return func(subsystem string) Log {
		base := logrus.New()
		base.SetOutput(output)
		base.SetFormatter(formatter)
		base.SetLevel(registry.LevelFor(subsystem))
		registry.register(subsystem, base)
		entry := base.WithFields(logrus.Fields{"subsystem": subsystem})
		return &logrusLog{Entry: entry}
	}
}

// NewStdoutFactory builds a Factory that writes to stdout, choosing a
// colorized text formatter for an interactive terminal and a JSON formatter
// otherwise.
func NewStdoutFactory(registry *Registry) Factory {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return NewFactory(os.Stdout, &logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			DisableQuote:    true,
		}, registry)
	}
	return NewFactory(os.Stdout, &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	}, registry)
}

// NewFileFactory builds a Factory that appends plain-text entries to the
// named file, creating it if necessary.
func NewFileFactory(registry *Registry, path string) (Factory, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening log file %q", path)
	}
	return NewFactory(file, &logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	}, registry), nil
}

// noOpLog implements Log without taking any action.
type noOpLog struct{}

// NewNoOpLog returns a Log that discards everything written to it.
func NewNoOpLog() Log { return noOpLog{} }

// NoOpFactory is a Factory that always returns the no-op Log.
func NoOpFactory(_ string) Log { return NewNoOpLog() }

func (noOpLog) WithField(string, interface{}) Log  { return noOpLog{} }
func (noOpLog) WithFields(Fields) Log               { return noOpLog{} }
func (noOpLog) Trace(...interface{})                {}
func (noOpLog) Tracef(string, ...interface{})       {}
func (noOpLog) Debug(...interface{})                {}
func (noOpLog) Debugf(string, ...interface{})       {}
func (noOpLog) Info(...interface{})                 {}
func (noOpLog) Infof(string, ...interface{})        {}
func (noOpLog) Warn(...interface{})                 {}
func (noOpLog) Warnf(string, ...interface{})        {}
func (noOpLog) Error(...interface{})                {}
func (noOpLog) Errorf(string, ...interface{})       {}
func (noOpLog) Panic(...interface{})                {}
func (noOpLog) Panicf(string, ...interface{})       {}
