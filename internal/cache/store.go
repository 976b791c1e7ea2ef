// Package cache persists the normalized event list per ticker as a single
// JSON file. Entries are overwritten wholesale on refresh, never merged.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/models"
)

// Store manages per-ticker cache files under a base directory.
type Store struct {
	dir    string
	logger *common.Logger
}

// NewStore creates a file-backed cache store rooted at dir.
func NewStore(dir string, logger *common.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Path returns the cache file path for a ticker.
func (s *Store) Path(ticker string) string {
	return filepath.Join(s.dir, strings.ToUpper(ticker)+"_events.json")
}

// Read returns the parsed cache entry for a ticker, or nil on any miss:
// absent file, unreadable file, malformed JSON, or an old-shape entry
// without a timestamp. Corruption is logged and treated as a miss, never
// surfaced to the caller.
func (s *Store) Read(ticker string) *models.CacheEntry {
	path := s.Path(ticker)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().
				Str("ticker", ticker).
				Str("path", path).
				Str("error", err.Error()).
				Msg("cache file unreadable, treating as miss")
		}
		return nil
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn().
			Str("ticker", ticker).
			Str("path", path).
			Str("error", err.Error()).
			Msg("cache file corrupt, treating as miss")
		return nil
	}
	if entry.Timestamp == "" {
		s.logger.Warn().
			Str("ticker", ticker).
			Str("path", path).
			Msg("cache entry missing timestamp, treating as miss")
		return nil
	}

	return &entry
}

// Write serializes events with the given compact timestamp and overwrites
// the ticker's cache file in a single whole-file write.
func (s *Store) Write(ticker string, events []models.Event, timestamp string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	entry := models.CacheEntry{
		Data:      events,
		Timestamp: timestamp,
	}
	if entry.Data == nil {
		entry.Data = []models.Event{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize cache entry: %w", err)
	}

	if err := os.WriteFile(s.Path(ticker), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Int("events", len(events)).
		Str("timestamp", timestamp).
		Msg("cache entry written")

	return nil
}

// Invalidate deletes the ticker's cache file if present; missing files are
// a no-op.
func (s *Store) Invalidate(ticker string) {
	path := s.Path(ticker)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().
			Str("ticker", ticker).
			Str("path", path).
			Str("error", err.Error()).
			Msg("failed to remove cache file")
	}
}
