package layers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ============================================================
// Persistence
// ============================================================

// Store persists the layer mapping config between runs.
type Store interface {
	Load() (*Config, error)
	Save(cfg *Config) error
}

// FileStore keeps the config as a JSON document on disk. A missing
// file loads as the defaults. The mutex serializes read-modify-write
// cycles from concurrent API calls.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read layer mappings: %w", err)
	}
	return Import(data)
}

func (s *FileStore) Save(cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := Export(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create mappings dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write layer mappings: %w", err)
	}
	return nil
}

// MemoryStore holds the config in memory. Used by tests and as the
// degraded mode when the file store is unavailable.
type MemoryStore struct {
	mu  sync.Mutex
	cfg *Config
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return DefaultConfig(), nil
	}
	return s.cfg.Clone(), nil
}

func (s *MemoryStore) Save(cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clone()
	return nil
}

// ============================================================
// Config operations
// ============================================================

// UpdateOverride stores a per-layer override and persists it. A
// failed load starts from the defaults so a corrupt file cannot
// block mapping edits.
func UpdateOverride(store Store, layerName string, e Entry) (*Config, error) {
	cfg, err := store.Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	if cfg.UserOverrides == nil {
		cfg.UserOverrides = map[string]Entry{}
	}
	cfg.UserOverrides[layerName] = e

	if err := store.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RemoveOverride drops one per-layer override, leaving the rest of
// the config untouched.
func RemoveOverride(store Store, layerName string) (*Config, error) {
	cfg, err := store.Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	delete(cfg.UserOverrides, layerName)

	if err := store.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Reset restores and persists the default table.
func Reset(store Store) (*Config, error) {
	cfg := DefaultConfig()
	if err := store.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
