// Package store persists pipeline reports as a single JSON object keyed by unit.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-ai/pkg/shared/files"

	scanerrors "github.com/scan-io-git/scanio-ai/pkg/shared/errors"
)

// Store is a concurrency-safe map of report entries backed by a JSON file.
type Store[E any] struct {
	mu      sync.Mutex
	path    string
	entries map[string]E
	logger  hclog.Logger
}

// New creates an empty store for path. Call Load to read existing entries.
func New[E any](path string, logger hclog.Logger) *Store[E] {
	return &Store[E]{
		path:    path,
		entries: make(map[string]E),
		logger:  logger.Named("store"),
	}
}

// Path returns the backing file path.
func (s *Store[E]) Path() string {
	return s.path
}

// Load replaces the in-memory entries with the contents of the backing file.
//
// A missing file leaves the store empty. A file that cannot be read or decoded also leaves the
// store empty; the returned *StoreCorruptError is informational and callers may continue.
func (s *Store[E]) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("no existing report, starting empty", "path", s.path)
			s.reset(nil)
			return nil
		}
		return s.corrupt(err)
	}

	loaded := make(map[string]E)
	if err := json.Unmarshal(data, &loaded); err != nil {
		return s.corrupt(err)
	}
	if loaded == nil {
		loaded = make(map[string]E)
	}

	s.reset(loaded)
	s.logger.Info("loaded existing report", "path", s.path, "entries", len(loaded))
	return nil
}

func (s *Store[E]) corrupt(err error) error {
	corruptErr := &scanerrors.StoreCorruptError{Path: s.path, Err: err}
	s.logger.Warn("existing report is unreadable, starting empty", "error", corruptErr)
	s.reset(nil)
	return corruptErr
}

func (s *Store[E]) reset(entries map[string]E) {
	if entries == nil {
		entries = make(map[string]E)
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// Has reports whether key is present.
func (s *Store[E]) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// Get returns the entry for key.
func (s *Store[E]) Get(key string) (E, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// Put inserts or replaces the entry for key.
func (s *Store[E]) Put(key string, entry E) {
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
}

// Delete removes key if present.
func (s *Store[E]) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len returns the number of entries.
func (s *Store[E]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns a shallow copy of all entries.
func (s *Store[E]) Snapshot() map[string]E {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]E, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Flush writes every entry to the backing file, replacing it atomically.
func (s *Store[E]) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries := s.Snapshot()
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := files.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report '%s': %w", s.path, err)
	}

	s.logger.Debug("report flushed", "path", s.path, "entries", len(entries))
	return nil
}

// ReadFile decodes a report file written by Flush. Unlike Load, a missing or broken file is an error.
func ReadFile[E any](path string) (map[string]E, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report '%s': %w", path, err)
	}
	entries := make(map[string]E)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &scanerrors.StoreCorruptError{Path: path, Err: err}
	}
	if entries == nil {
		entries = make(map[string]E)
	}
	return entries, nil
}
