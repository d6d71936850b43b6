// Package review implements the per-project, per-locale review ledger —
// a persisted record of which translation keys a human has confirmed correct.
//
// Ledgers are stored as review-data/{projectID}/{locale}-review.json:
//
//	{
//	  "reviewed": ["app.title", "app.save"],
//	  "lastUpdate": "2025-08-31T12:00:00Z"
//	}
//
// The reviewed set only grows; marking a key reviewed is idempotent, and
// editing a translation value never clears its review status.
package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Status is the persisted ledger for one project+locale pair.
type Status struct {
	Reviewed   []string `json:"reviewed"`
	LastUpdate *string  `json:"lastUpdate"`
}

// Empty reports whether nothing has been reviewed yet.
func (s *Status) Empty() bool {
	return len(s.Reviewed) == 0
}

// Contains reports whether a key is marked reviewed.
func (s *Status) Contains(key string) bool {
	for _, k := range s.Reviewed {
		if k == key {
			return true
		}
	}
	return false
}

// Ledger reads and writes review status files under a root directory.
type Ledger struct {
	root string

	mu sync.Mutex
}

// NewLedger returns a ledger rooted at dir (typically "review-data").
func NewLedger(dir string) *Ledger {
	return &Ledger{root: dir}
}

// Dir returns the ledger directory for a project, without creating it.
func (l *Ledger) Dir(projectID string) string {
	if projectID == "" {
		return l.root
	}
	return filepath.Join(l.root, projectID)
}

func (l *Ledger) statusPath(projectID, locale string) string {
	return filepath.Join(l.Dir(projectID), locale+"-review.json")
}

// Load returns the review status for a project+locale. A missing or
// corrupted status file degrades to an empty status, never an error.
func (l *Ledger) Load(projectID, locale string) *Status {
	empty := &Status{Reviewed: []string{}}

	data, err := os.ReadFile(l.statusPath(projectID, locale))
	if err != nil {
		return empty
	}

	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return empty
	}
	if s.Reviewed == nil {
		s.Reviewed = []string{}
	}
	return &s
}

// Mark adds keys to the reviewed set (skipping duplicates), stamps
// lastUpdate, and persists immediately. It returns the resulting reviewed
// count.
func (l *Ledger) Mark(projectID, locale string, keys []string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	status := l.Load(projectID, locale)
	for _, key := range keys {
		if !status.Contains(key) {
			status.Reviewed = append(status.Reviewed, key)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	status.LastUpdate = &now

	if err := l.save(projectID, locale, status); err != nil {
		return 0, err
	}
	return len(status.Reviewed), nil
}

func (l *Ledger) save(projectID, locale string, status *Status) error {
	dir := l.Dir(projectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating review directory: %w", err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling review status: %w", err)
	}

	path := l.statusPath(projectID, locale)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Remove deletes a project's entire ledger directory. Best-effort: removal
// errors are swallowed, matching project deletion semantics.
func (l *Ledger) Remove(projectID string) {
	if projectID == "" {
		return
	}
	_ = os.RemoveAll(l.Dir(projectID))
}
