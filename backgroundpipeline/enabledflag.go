package backgroundpipeline

import "sync/atomic"

// enabledFlag is a tiny atomic bool, used both by the pipeline (shared
// is_enabled state) and by each Proxy (its own independent disposed
// state, so one proxy's early dispose never touches its siblings).
type enabledFlag struct {
	v atomic.Bool
}

func newEnabledFlag() *enabledFlag {
	return &enabledFlag{}
}

func (f *enabledFlag) get() bool     { return f.v.Load() }
func (f *enabledFlag) set(val bool)  { f.v.Store(val) }
