package tracing

import (
	"fmt"
	"sort"
	"strings"
)

// Switch is a pure predicate over (tracer name, level), gating admission
// of a trace entry to the writer it guards.
type Switch interface {
	IsEnabled(tracerName string, level Level) bool
}

// ThresholdSwitch admits any entry at or above a fixed severity.
type ThresholdSwitch struct {
	Threshold Level
}

func (s ThresholdSwitch) IsEnabled(_ string, level Level) bool {
	return level >= s.Threshold
}

// OnOffSwitch admits or rejects unconditionally.
type OnOffSwitch struct {
	On bool
}

func (s OnOffSwitch) IsEnabled(string, Level) bool {
	return s.On
}

// SwitchSet is a longest-prefix mapping from tracer-name pattern to
// Switch; the empty prefix "" is the default fallback. Grounded on the
// internal/logger.Registry's "subsystem=level,subsystem=level" parsing
// idiom, generalized from a flat level map to arbitrary Switch values so
// a more specific prefix can flip a coarser one off entirely (spec
// scenario F: a threshold(Warn) default overridden to OnOff(false) by a
// more specific prefix).
type SwitchSet struct {
	entries []prefixEntry
}

type prefixEntry struct {
	prefix string
	sw     Switch
}

// NewSwitchSet builds a SwitchSet from prefix/switch pairs. An empty
// SwitchSet (or one never configured for a given name) falls back to a
// no-op disabled switch: IsEnabled always false.
func NewSwitchSet(entries map[string]Switch) *SwitchSet {
	s := &SwitchSet{}
	for prefix, sw := range entries {
		s.entries = append(s.entries, prefixEntry{prefix: prefix, sw: sw})
	}
	sort.Slice(s.entries, func(i, j int) bool {
		return len(s.entries[i].prefix) > len(s.entries[j].prefix)
	})
	return s
}

// Set adds or replaces the switch for prefix.
func (s *SwitchSet) Set(prefix string, sw Switch) {
	for i, e := range s.entries {
		if e.prefix == prefix {
			s.entries[i].sw = sw
			return
		}
	}
	s.entries = append(s.entries, prefixEntry{prefix: prefix, sw: sw})
	sort.Slice(s.entries, func(i, j int) bool {
		return len(s.entries[i].prefix) > len(s.entries[j].prefix)
	})
}

// SwitchFor returns the Switch whose prefix is the longest match for
// name, or a disabled OnOffSwitch if none matches.
func (s *SwitchSet) SwitchFor(name string) Switch {
	for _, e := range s.entries {
		if e.prefix == "" || strings.HasPrefix(name, e.prefix) {
			return e.sw
		}
	}
	return OnOffSwitch{On: false}
}

// IsEnabled is a convenience that looks up the matching switch and
// evaluates it in one call.
func (s *SwitchSet) IsEnabled(name string, level Level) bool {
	return s.SwitchFor(name).IsEnabled(name, level)
}

// ParseSwitchSpec parses a "prefix=level,prefix=level" string into a
// SwitchSet of ThresholdSwitch entries, mirroring
// internal/logger.NewRegistry's spec-string parsing for the
// operator-facing configuration surface.
func ParseSwitchSpec(spec string, levelNames map[string]Level) (*SwitchSet, error) {
	set := NewSwitchSet(nil)
	if spec == "" {
		return set, nil
	}
	for _, pair := range strings.Split(spec, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid switch entry %q: expected prefix=level", pair)
		}
		level, ok := levelNames[strings.ToLower(parts[1])]
		if !ok {
			return nil, fmt.Errorf("invalid level %q for prefix %q", parts[1], parts[0])
		}
		set.Set(parts[0], ThresholdSwitch{Threshold: level})
	}
	return set, nil
}
