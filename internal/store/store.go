// Package store persists complete analysis records as JSON files under a
// single directory, one file per run. Records are written once and never
// rewritten.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/krisis/internal/framework"
	"github.com/ppiankov/krisis/internal/model"
)

const (
	filePrefix = "analysis_"
	fileSuffix = ".json"
)

// Store persists analysis records.
type Store struct {
	dir string
}

// New creates the storage directory if needed and returns a store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Save writes the record as indented JSON and returns the file path.
func (s *Store) Save(result *model.AnalysisResult) (string, error) {
	if result.ID == "" {
		return "", fmt.Errorf("analysis result has no ID")
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal analysis: %w", err)
	}
	data = append(data, '\n')
	path := s.path(result.ID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write analysis: %w", err)
	}
	return path, nil
}

// Load reads a record by ID. Framework payloads are re-bound to their typed
// forms so a loaded record renders exactly like a fresh one.
func (s *Store) Load(id string) (*model.AnalysisResult, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("analysis %s not found", id)
		}
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var result model.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	retypePayloads(&result)
	return &result, nil
}

// List returns the stored analysis IDs in name order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
	}
	return ids, nil
}

// Summary is one row of the stored-run listing.
type Summary struct {
	ID         string
	CreatedAt  time.Time
	Title      string
	Status     string
	Frameworks int
}

// Summaries loads every stored record and returns their summaries, newest
// first. Unreadable records are skipped rather than failing the listing.
func (s *Store) Summaries() ([]Summary, error) {
	ids, err := s.List()
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(ids))
	for _, id := range ids {
		result, err := s.Load(id)
		if err != nil {
			continue
		}
		summary := Summary{
			ID:         result.ID,
			CreatedAt:  result.CreatedAt,
			Frameworks: len(result.FrameworkResults),
		}
		if result.ProblemContext != nil {
			summary.Title = result.ProblemContext.Title
		}
		if result.Sufficiency != nil {
			summary.Status = string(result.Sufficiency.OverallStatus)
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, filePrefix+id+fileSuffix)
}

// retypePayloads re-binds the any-typed framework payloads that JSON
// decoding left as generic maps.
func retypePayloads(result *model.AnalysisResult) {
	for i := range result.FrameworkResults {
		fr := &result.FrameworkResults[i]
		if fr.Result == nil {
			continue
		}
		raw, err := json.Marshal(fr.Result)
		if err != nil {
			continue
		}
		switch fr.FrameworkName {
		case framework.PorterName:
			var p framework.PorterAnalysis
			if json.Unmarshal(raw, &p) == nil {
				fr.Result = &p
			}
		case framework.SystemsDynamicsName:
			var sd framework.SystemsDynamicsAnalysis
			if json.Unmarshal(raw, &sd) == nil {
				fr.Result = &sd
			}
		}
	}
}
