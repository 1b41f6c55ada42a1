// Package config provides centralized configuration for Rewind runtime
// values.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/avelhart/rewind/internal/memory"
	"github.com/avelhart/rewind/internal/storage"
)

// RuntimeConfig holds all runtime configuration values.
type RuntimeConfig struct {
	// History holds the capacity and compaction limits.
	History HistoryConfig

	// Storage holds database configuration.
	Storage StorageConfig
}

// HistoryConfig holds the history engine's capacity knobs.
type HistoryConfig struct {
	// MaxHistorySize bounds regular undo entries. Default: 50.
	MaxHistorySize int

	// CompactThreshold triggers partition compaction. Default: 100.
	CompactThreshold int

	// KeepRecent entries survive partition compaction. Default: 30.
	KeepRecent int

	// ByteBudget bounds estimated payload bytes. Default: 50 MB.
	ByteBudget int64

	// EvictionWindow protects recent entries from eviction. Default: 1h.
	EvictionWindow time.Duration
}

// StorageConfig holds storage-related configuration.
type StorageConfig struct {
	// Path is the database directory. Default: XDG data dir.
	Path string

	// InMemory disables persistence.
	InMemory bool
}

// Default returns the default runtime configuration.
func Default() RuntimeConfig {
	return RuntimeConfig{
		History: HistoryConfig{
			MaxHistorySize:   memory.DefaultMaxHistorySize,
			CompactThreshold: memory.DefaultCompactThreshold,
			KeepRecent:       memory.DefaultKeepRecent,
			ByteBudget:       memory.DefaultByteBudget,
			EvictionWindow:   memory.DefaultEvictionWindow,
		},
		Storage: StorageConfig{
			Path: storage.DefaultPath(),
		},
	}
}

// Load returns the default configuration with environment overrides
// applied.
//
// Recognized variables: REWIND_DATABASE (path, or ":memory:"),
// REWIND_MAX_HISTORY, REWIND_COMPACT_THRESHOLD, REWIND_BYTE_BUDGET.
func Load() RuntimeConfig {
	cfg := Default()

	if v := os.Getenv("REWIND_DATABASE"); v != "" {
		if v == ":memory:" {
			cfg.Storage.InMemory = true
		} else {
			cfg.Storage.Path = v
		}
	}
	if n, ok := envInt("REWIND_MAX_HISTORY"); ok {
		cfg.History.MaxHistorySize = n
	}
	if n, ok := envInt("REWIND_COMPACT_THRESHOLD"); ok {
		cfg.History.CompactThreshold = n
	}
	if n, ok := envInt("REWIND_BYTE_BUDGET"); ok {
		cfg.History.ByteBudget = int64(n)
	}
	return cfg
}

// MemoryConfig converts the history section into the memory manager's
// configuration.
func (c RuntimeConfig) MemoryConfig() memory.Config {
	return memory.Config{
		MaxHistorySize:   c.History.MaxHistorySize,
		CompactThreshold: c.History.CompactThreshold,
		KeepRecent:       c.History.KeepRecent,
		ByteBudget:       c.History.ByteBudget,
		EvictionWindow:   c.History.EvictionWindow,
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
