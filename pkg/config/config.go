// Package config holds the small set of tunables the BufferPool and
// LockManager read at startup, loaded from the environment with
// documented defaults. There is no dedicated config/env library in the
// example corpus to ground this on (see DESIGN.md); it follows the
// teacher's own Config-struct idiom from pkg/logging instead.
package config

import (
	"fmt"
	"os"
	"strconv"

	"minirel/pkg/concurrency/lock"
	"minirel/pkg/dberrors"
	"minirel/pkg/memory"
	"minirel/pkg/storage"
)

// BufferPoolConfig controls the BufferPool's cache capacity and the
// on-disk page size every DbFile assumes.
type BufferPoolConfig struct {
	NumPages int
	PageSize int
}

// LockConfig controls the LockManager's acquisition-retry loop.
type LockConfig struct {
	RetryMinMillis int
	RetryMaxMillis int
	MaxWaitMillis  int
}

// DefaultBufferPoolConfig returns the engine's built-in defaults:
// memory.DefaultNumPages pages at storage.DefaultPageSize bytes each.
func DefaultBufferPoolConfig() BufferPoolConfig {
	return BufferPoolConfig{
		NumPages: memory.DefaultNumPages,
		PageSize: storage.DefaultPageSize,
	}
}

// DefaultLockConfig returns the engine's built-in lock-retry defaults,
// matching the LockManager's own [500ms, 550ms) / 5s constants.
func DefaultLockConfig() LockConfig {
	return LockConfig{
		RetryMinMillis: 500,
		RetryMaxMillis: 550,
		MaxWaitMillis:  5000,
	}
}

// LoadBufferPoolConfig reads MINIREL_BUFFERPOOL_PAGES and
// MINIREL_PAGE_SIZE, falling back to the defaults for any unset or
// unparsable value.
func LoadBufferPoolConfig() BufferPoolConfig {
	cfg := DefaultBufferPoolConfig()
	if v, ok := intEnv("MINIREL_BUFFERPOOL_PAGES"); ok {
		cfg.NumPages = v
	}
	if v, ok := intEnv("MINIREL_PAGE_SIZE"); ok {
		cfg.PageSize = v
	}
	return cfg
}

// LoadLockConfig reads MINIREL_LOCK_RETRY_MIN_MS, MINIREL_LOCK_RETRY_MAX_MS,
// and MINIREL_LOCK_MAX_WAIT_MS, falling back to the defaults for any unset
// or unparsable value.
func LoadLockConfig() LockConfig {
	cfg := DefaultLockConfig()
	if v, ok := intEnv("MINIREL_LOCK_RETRY_MIN_MS"); ok {
		cfg.RetryMinMillis = v
	}
	if v, ok := intEnv("MINIREL_LOCK_RETRY_MAX_MS"); ok {
		cfg.RetryMaxMillis = v
	}
	if v, ok := intEnv("MINIREL_LOCK_MAX_WAIT_MS"); ok {
		cfg.MaxWaitMillis = v
	}
	return cfg
}

// NewLockManager builds a lock.Manager using LoadLockConfig's retry
// timings — the one place production startup code should construct a
// Manager, so an operator's environment overrides actually take effect.
func NewLockManager() *lock.Manager {
	cfg := LoadLockConfig()
	jitter := cfg.RetryMaxMillis - cfg.RetryMinMillis
	return lock.NewManagerWithTimings(cfg.RetryMinMillis, jitter, cfg.MaxWaitMillis)
}

// NewBufferPool builds a BufferPool sized and timed from
// LoadBufferPoolConfig/LoadLockConfig, validating that the configured
// page size matches the process-wide one (changing it at runtime is
// unsupported outside tests — see storage.SetPageSizeForTest).
func NewBufferPool(catalog *memory.Catalog) (*memory.BufferPool, error) {
	cfg := LoadBufferPoolConfig()
	if cfg.PageSize != storage.PageSize() {
		return nil, storagePageSizeMismatch(cfg.PageSize, storage.PageSize())
	}
	return memory.NewBufferPoolWithLockManager(catalog, cfg.NumPages, NewLockManager()), nil
}

func storagePageSizeMismatch(configured, actual int) error {
	return dberrors.NewInvalidArgument("config.NewBufferPool",
		fmt.Sprintf("MINIREL_PAGE_SIZE=%d does not match process page size %d; page size must be set before any page is read", configured, actual))
}

func intEnv(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
