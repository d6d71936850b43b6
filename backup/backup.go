// Package backup snapshots locale files before mutating writes.
//
// Snapshots are verbatim copies stored under backups/{projectID}/ as
// {locale}_{timestamp}.json, where the timestamp is RFC 3339 with colons
// and dots replaced by dashes. Backups are append-only and never pruned;
// retention is deliberately out of scope.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Writer creates timestamped copies of locale files under a root directory.
type Writer struct {
	root string
}

// NewWriter returns a writer rooted at dir (typically "backups").
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

// Dir returns the backup directory for a project, without creating it.
func (w *Writer) Dir(projectID string) string {
	if projectID == "" {
		return w.root
	}
	return filepath.Join(w.root, projectID)
}

// Create copies sourcePath/{locale}.json into the project's backup
// directory. Returns the backup path, or "" with no error when there is
// nothing to back up (empty project or source path).
func (w *Writer) Create(projectID, sourcePath, locale string) (string, error) {
	if projectID == "" || sourcePath == "" {
		return "", nil
	}

	dir := w.Dir(projectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	src := filepath.Join(sourcePath, locale+".json")
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", src, err)
	}

	timestamp := strings.NewReplacer(":", "-", ".", "-").
		Replace(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	dst := filepath.Join(dir, fmt.Sprintf("%s_%s.json", locale, timestamp))

	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", dst, err)
	}
	return dst, nil
}

// Remove deletes a project's entire backup directory. Best-effort.
func (w *Writer) Remove(projectID string) {
	if projectID == "" {
		return
	}
	_ = os.RemoveAll(w.Dir(projectID))
}
