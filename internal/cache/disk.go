package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/krisis/internal/llm"
)

// diskStore persists completion responses as one JSON file per key.
type diskStore struct {
	dir string
}

type diskEntry struct {
	Response  llm.CompletionResponse `json:"response"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// load reads the entry for key. Corrupt and expired entries are removed
// and behave like misses.
func (s *diskStore) load(key string) (*llm.CompletionResponse, bool) {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return &entry.Response, true
}

func (s *diskStore) store(key string, resp *llm.CompletionResponse, expiresAt time.Time) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.Marshal(diskEntry{Response: *resp, ExpiresAt: expiresAt})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (s *diskStore) clear() error {
	return os.RemoveAll(s.dir)
}

func (s *diskStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
