package manager

import (
	"context"
	"reflect"
	"sync"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/fluxlog/fluxlog/backgroundpipeline"
	"github.com/fluxlog/fluxlog/entrywriter"
	"github.com/fluxlog/fluxlog/internal/gerror"
	"github.com/fluxlog/fluxlog/internal/logger"
	"github.com/fluxlog/fluxlog/setuplog"
	"github.com/fluxlog/fluxlog/startable"
)

// writerEntry is everything the manager tracks for one configured log
// writer: the constructed inner writer, the background pipeline wrapping
// it when BackgroundLogging is configured, and a cache of the Proxy[T]
// instances handed out per entry type (proxies are generic and so cannot
// be stored in a single typed field; they are boxed the same way
// entrywriter.Map boxes its writers).
type writerEntry struct {
	mu       sync.Mutex
	cfg      LogWriterConfig
	inner    *entrywriter.LogWriter
	pipeline *backgroundpipeline.Pipeline
	proxies  map[reflect.Type]any
	started  bool
}

// LogManager is the top-level orchestrator for a configured set of log
// writers: it constructs them lazily, applies the background-pipeline
// initializer when configured, and tracks startup order so Stop can
// unwind writers in reverse, continuing past per-writer failures and
// aggregating them for the caller.
type LogManager struct {
	*startable.Machine

	mu      sync.Mutex
	cfg     LogManagerConfig
	log     logger.Log
	setup   *setuplog.Log
	writers map[string]*writerEntry
	order   []string
}

// NewLogManager constructs a LogManager for cfg. The manager itself is
// Unstarted until GetLogWriter (or an explicit Start) is called.
func NewLogManager(cfg LogManagerConfig, log logger.Log) *LogManager {
	if log == nil {
		log = logger.NewNoOpLog()
	}
	lm := &LogManager{
		cfg:     cfg,
		log:     log,
		setup:   setuplog.New(),
		writers: make(map[string]*writerEntry),
	}
	lm.Machine = startable.New("LogManager", log, lm.setup.Scoped("LogManager"), nil, lm.stopAll)
	return lm
}

// SetupLog returns the manager's setup log, shared by every writer and
// pipeline it owns.
func (lm *LogManager) SetupLog() *setuplog.Log {
	return lm.setup
}

// GetLogWriter looks up or lazily constructs the named writer, starting
// the manager itself if this is the first writer requested. Fails with
// gerror.ErrCodeKeyNotFound if name is not registered in the manager's
// configuration.
func (lm *LogManager) GetLogWriter(name string) (*entrywriter.LogWriter, error) {
	lm.Machine.EnsureAutoStarted(context.Background())

	lm.mu.Lock()
	entry, ok := lm.writers[name]
	if ok {
		lm.mu.Unlock()
		if err := lm.ensureStarted(entry); err != nil {
			return nil, err
		}
		return entry.inner, nil
	}

	cfg, ok := lm.cfg.WriterConfig(name)
	if !ok {
		lm.mu.Unlock()
		return nil, gerror.NewErrKeyNotFound("no log writer configured named " + name)
	}

	inner, err := cfg.Build(lm.log, lm.setup.Scoped(name))
	if err != nil {
		lm.mu.Unlock()
		return nil, gerror.NewErrStartFailed(name, err)
	}

	entry = &writerEntry{cfg: cfg, inner: inner, proxies: make(map[reflect.Type]any)}
	if cfg.BackgroundLogging {
		entry.pipeline = backgroundpipeline.New(name, inner, backgroundpipeline.Options{
			Log:         lm.log,
			Setup:       lm.setup.Scoped(name),
			StopTimeout: cfg.StopTimeout,
		})
	}
	lm.writers[name] = entry
	lm.order = append(lm.order, name)
	lm.mu.Unlock()

	if err := lm.ensureStarted(entry); err != nil {
		return nil, err
	}
	return entry.inner, nil
}

func (lm *LogManager) ensureStarted(entry *writerEntry) error {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.started {
		return nil
	}
	if entry.pipeline != nil {
		if err := entry.pipeline.Start(context.Background()); err != nil {
			return err
		}
	} else {
		if err := entry.inner.Start(context.Background()); err != nil {
			return err
		}
	}
	entry.started = true
	return nil
}

// GetEntryWriter returns the (possibly composite) entry writer for T
// served by the named log writer. When the writer is background-logged,
// this lazily builds and caches a backgroundpipeline.Proxy[T]; a writer
// declared is_synchronized==false and not background-logged is wrapped
// in entrywriter.Sync, since the background pipeline's single worker
// already serializes writes and a redundant synchronizing decorator is
// suppressed in that case, per spec §9.
func GetEntryWriter[T any](lm *LogManager, writerName string) (entrywriter.EntryWriter[T], error) {
	if _, err := lm.GetLogWriter(writerName); err != nil {
		return nil, err
	}

	lm.mu.Lock()
	entry := lm.writers[writerName]
	lm.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	t := reflect.TypeOf((*T)(nil)).Elem()
	if cached, ok := entry.proxies[t]; ok {
		return cached.(entrywriter.EntryWriter[T]), nil
	}

	if entry.pipeline != nil {
		proxy, err := backgroundpipeline.NewProxy[T](writerName+":"+t.String(), entry.pipeline, entry.cfg.QueueCapacity)
		if err != nil {
			return nil, err
		}
		if err := proxy.Start(context.Background()); err != nil {
			return nil, err
		}
		entry.proxies[t] = entrywriter.EntryWriter[T](proxy)
		return proxy, nil
	}

	writer, ok := entrywriter.TryGetEntryWriter[T](entry.inner)
	if !ok {
		return nil, gerror.NewErrKeyNotFound("no entry writer registered for this type on " + writerName)
	}
	if !entry.inner.IsSynchronized() {
		writer = entrywriter.Sync[T](writer)
	}
	entry.proxies[t] = writer
	return writer, nil
}

// Stop stops all log writers in reverse startup order, continuing past
// per-writer failures and aggregating them into one returned error via
// hashicorp/go-multierror so callers can inspect every failure rather
// than only the first.
func (lm *LogManager) Stop() error {
	return lm.Machine.Stop()
}

func (lm *LogManager) stopAll() error {
	lm.mu.Lock()
	order := make([]string, len(lm.order))
	copy(order, lm.order)
	lm.mu.Unlock()

	var result *multierror.Error
	for i := len(order) - 1; i >= 0; i-- {
		lm.mu.Lock()
		entry := lm.writers[order[i]]
		lm.mu.Unlock()

		var err error
		if entry.pipeline != nil {
			err = entry.pipeline.Stop()
		} else {
			err = entry.inner.Stop()
		}
		if err != nil {
			result = multierror.Append(result, err)
			lm.setup.Record(order[i], setuplog.SeverityError, "writer failed to stop", err)
		}
	}
	if result == nil {
		return nil
	}
	return result
}

// IsHealthy reports whether the manager's setup log has no entries above
// Info severity.
func (lm *LogManager) IsHealthy() bool {
	return lm.setup.IsHealthy()
}
