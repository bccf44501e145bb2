package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const defaultLevel = logrus.InfoLevel

var namedLevels = map[string]logrus.Level{
	"trace":   logrus.TraceLevel,
	"debug":   logrus.DebugLevel,
	"info":    logrus.InfoLevel,
	"warning": logrus.WarnLevel,
	"error":   logrus.ErrorLevel,
	"fatal":   logrus.FatalLevel,
	"panic":   logrus.PanicLevel,
}

// LevelSpec is a comma-separated list of "subsystem=level" pairs, e.g.
// "BackgroundPipeline=debug,TraceManager=warning". An entry with an empty
// subsystem name sets the default level for subsystems with no explicit entry.
type LevelSpec string

// Registry tracks the configured level for each operational-logging subsystem
// and the live *logrus.Logger instances that were handed out for it, so that
// levels can later be adjusted without recreating every Log.
type Registry struct {
	mu               sync.Mutex
	levelBySubsystem map[string]logrus.Level
	liveBySubsystem  map[string][]*logrus.Logger
}

// ValidLevelNames returns the recognized level names, for use in CLI help text.
func ValidLevelNames() []string {
	names := make([]string, 0, len(namedLevels))
	for name := range namedLevels {
		names = append(names, name)
	}
	return names
}

// NewRegistry parses spec and returns a Registry. An empty spec is valid and
// means every subsystem uses the default (info) level.
func NewRegistry(spec LevelSpec) (*Registry, error) {
	r := &Registry{
		levelBySubsystem: make(map[string]logrus.Level),
		liveBySubsystem:  make(map[string][]*logrus.Logger),
	}
	if spec == "" {
		return r, nil
	}
	for _, pair := range strings.Split(string(spec), ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid log level entry %q: expected subsystem=level", pair)
		}
		level, ok := namedLevels[strings.ToLower(parts[1])]
		if !ok {
			return nil, fmt.Errorf("invalid log level %q for subsystem %q", parts[1], parts[0])
		}
		r.levelBySubsystem[parts[0]] = level
	}
	return r, nil
}

// LevelFor returns the configured level for subsystem, or the default level
// if none was configured.
func (r *Registry) LevelFor(subsystem string) logrus.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	if level, ok := r.levelBySubsystem[subsystem]; ok {
		return level
	}
	if level, ok := r.levelBySubsystem[""]; ok {
		return level
	}
	return defaultLevel
}

// SetLevel changes the level for subsystem and applies it immediately to
// every *logrus.Logger previously handed out for that subsystem.
func (r *Registry) SetLevel(subsystem string, level logrus.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levelBySubsystem[subsystem] = level
	for _, l := range r.liveBySubsystem[subsystem] {
		l.SetLevel(level)
	}
}

func (r *Registry) register(subsystem string, l *logrus.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.liveBySubsystem[subsystem] = append(r.liveBySubsystem[subsystem], l)
}
