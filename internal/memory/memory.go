// Package memory keeps the history footprint bounded. It implements the
// history.Compactor hook with three passes: folding undo-stack overflow
// into a bottom checkpoint, partition compaction past an entry-count
// threshold, and byte-budget eviction of stale entries.
//
// Compaction is observable-state-preserving: a compacted checkpoint's
// delta chain undoes to exactly the state undoing the original entries
// would have reached. Entries flagged system, entries whose description
// carries a checkpoint marker, and the most recent half of the configured
// history size are never compacted or evicted.
package memory

import (
	"strings"
	"time"

	"github.com/avelhart/rewind/internal/command"
	"github.com/avelhart/rewind/internal/history"
	"github.com/avelhart/rewind/internal/logging"
	"github.com/avelhart/rewind/internal/snapshot"
)

// Defaults for the capacity and compaction knobs.
const (
	DefaultMaxHistorySize   = 50
	DefaultCompactThreshold = 100
	DefaultKeepRecent       = 30
	DefaultByteBudget       = 50 << 20 // 50 MB
	DefaultEvictionWindow   = time.Hour
)

// Config holds the capacity limits the manager enforces.
type Config struct {
	// MaxHistorySize bounds the number of regular (non-system,
	// non-checkpoint) entries on the undo stack.
	MaxHistorySize int

	// CompactThreshold is the total entry count past which partition
	// compaction runs.
	CompactThreshold int

	// KeepRecent is the number of newest entries partition compaction
	// always preserves individually.
	KeepRecent int

	// ByteBudget bounds the estimated serialized size of all captured
	// payloads.
	ByteBudget int64

	// EvictionWindow protects recent entries from byte-budget eviction.
	EvictionWindow time.Duration
}

// DefaultConfig returns the default capacity configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistorySize:   DefaultMaxHistorySize,
		CompactThreshold: DefaultCompactThreshold,
		KeepRecent:       DefaultKeepRecent,
		ByteBudget:       DefaultByteBudget,
		EvictionWindow:   DefaultEvictionWindow,
	}
}

// Manager enforces the configured limits over the undo stack.
type Manager struct {
	cfg      Config
	resolver command.Resolver

	// now is stubbed in tests.
	now func() time.Time
}

// New creates a memory manager. The resolver is handed to compacted
// checkpoints so they can reach stores at undo/redo time.
func New(cfg Config, resolver command.Resolver) *Manager {
	if cfg.MaxHistorySize <= 0 {
		cfg.MaxHistorySize = DefaultMaxHistorySize
	}
	if cfg.CompactThreshold <= 0 {
		cfg.CompactThreshold = DefaultCompactThreshold
	}
	if cfg.KeepRecent <= 0 {
		cfg.KeepRecent = DefaultKeepRecent
	}
	if cfg.ByteBudget <= 0 {
		cfg.ByteBudget = DefaultByteBudget
	}
	if cfg.EvictionWindow <= 0 {
		cfg.EvictionWindow = DefaultEvictionWindow
	}
	return &Manager{cfg: cfg, resolver: resolver, now: time.Now}
}

// Enforce implements history.Compactor.
func (m *Manager) Enforce(undo []*history.Entry) []*history.Entry {
	undo = m.enforceHistorySize(undo)
	undo = m.enforceCompactThreshold(undo)
	undo = m.enforceByteBudget(undo)
	return undo
}

// enforceHistorySize folds regular entries beyond MaxHistorySize into a
// single checkpoint at the bottom of the stack.
func (m *Manager) enforceHistorySize(undo []*history.Entry) []*history.Entry {
	overflow := m.regularCount(undo) - m.cfg.MaxHistorySize
	if overflow <= 0 {
		return undo
	}
	return m.foldBottom(undo, overflow)
}

// enforceCompactThreshold compresses everything but the newest KeepRecent
// entries once the stack grows past CompactThreshold.
func (m *Manager) enforceCompactThreshold(undo []*history.Entry) []*history.Entry {
	if len(undo) <= m.cfg.CompactThreshold {
		return undo
	}
	return m.foldBottom(undo, len(undo)-m.cfg.KeepRecent)
}

// foldBottom merges up to maxFold foldable entries from the bottom of the
// stack into one compacted checkpoint. Folding stops at the first entry
// that is protected or cannot express its effect as deltas, and never
// reaches into the most recent MaxHistorySize/2 entries.
func (m *Manager) foldBottom(undo []*history.Entry, maxFold int) []*history.Entry {
	guard := len(undo) - m.cfg.MaxHistorySize/2
	if maxFold > guard {
		maxFold = guard
	}
	if maxFold <= 0 {
		return undo
	}

	start := 0
	var base *command.Compacted
	if len(undo) > 0 {
		if c, ok := undo[0].Command.(*command.Compacted); ok {
			base = c
			start = 1
		}
	}

	var (
		segments []command.Segment
		count    int
	)
	for i := start; i < len(undo) && count < maxFold; i++ {
		e := undo[i]
		if m.protected(e) {
			break
		}
		dp, ok := e.Command.(command.DeltaProvider)
		if !ok {
			break
		}
		segs := dp.DeltaSegments()
		if segs == nil {
			break
		}
		segments = append(segments, segs...)
		count++
	}
	if count == 0 {
		return undo
	}
	// A checkpoint only pays for itself when it represents more than one
	// action; a lone overflow entry waits for company.
	if base == nil && count < 2 {
		return undo
	}

	total := count
	if base != nil {
		segments = append(append([]command.Segment{}, base.DeltaSegments()...), segments...)
		total += base.Count()
	}
	ckpt := history.NewEntry(command.NewCompacted(m.resolver, mergeSegments(segments), total))

	logging.Debug("history compacted",
		"folded", count,
		"represented", total,
		"remaining", len(undo)-start-count+1,
	)

	out := make([]*history.Entry, 0, len(undo)-start-count+1)
	out = append(out, ckpt)
	out = append(out, undo[start+count:]...)
	return out
}

// enforceByteBudget drops unprotected entries older than the eviction
// window, oldest first, until the estimated footprint fits the budget.
func (m *Manager) enforceByteBudget(undo []*history.Entry) []*history.Entry {
	total := int64(0)
	sizes := make([]int64, len(undo))
	for i, e := range undo {
		sizes[i] = EstimateSize(e)
		total += sizes[i]
	}
	if total <= m.cfg.ByteBudget {
		return undo
	}

	cutoff := m.now().Add(-m.cfg.EvictionWindow)
	out := undo[:0:0]
	dropped := 0
	for i, e := range undo {
		if total > m.cfg.ByteBudget && !m.protected(e) && e.Timestamp.Before(cutoff) {
			total -= sizes[i]
			dropped++
			continue
		}
		out = append(out, e)
	}
	if dropped > 0 {
		logging.Debug("history evicted", "dropped", dropped, "bytes", total)
	}
	return out
}

// EstimateSize approximates an entry's memory footprint as the byte
// length of its safe-serialized payload. This is an approximation, not
// exact accounting.
func EstimateSize(e *history.Entry) int64 {
	const entryOverhead = 128

	p, ok := e.Command.(command.Payloader)
	if !ok {
		return int64(len(e.Description)) + entryOverhead
	}
	data, err := snapshot.Marshal(p.Payload())
	if err != nil {
		return int64(len(e.Description)) + entryOverhead
	}
	return int64(len(data)) + entryOverhead
}

func (m *Manager) regularCount(undo []*history.Entry) int {
	n := 0
	for _, e := range undo {
		if !m.protected(e) {
			n++
		}
	}
	return n
}

// protected reports whether compaction and eviction must leave the entry
// alone: system entries and anything carrying a checkpoint marker.
func (m *Manager) protected(e *history.Entry) bool {
	if e.Category == command.CategorySystem {
		return true
	}
	return IsCheckpointDescription(e.Description)
}

// IsCheckpointDescription reports whether a description carries the
// checkpoint marker compaction must preserve.
func IsCheckpointDescription(desc string) bool {
	return strings.Contains(strings.ToLower(desc), "checkpoint")
}

// mergeSegments coalesces adjacent segments against the same store so a
// long-lived checkpoint's chain stays compact.
func mergeSegments(segs []command.Segment) []command.Segment {
	if len(segs) < 2 {
		return segs
	}
	out := make([]command.Segment, 0, len(segs))
	for _, s := range segs {
		if n := len(out); n > 0 && out[n-1].Store == s.Store {
			out[n-1].Deltas = append(out[n-1].Deltas, s.Deltas...)
			continue
		}
		out = append(out, s)
	}
	return out
}
