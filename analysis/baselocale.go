package analysis

import (
	"os"
	"path/filepath"
	"strings"
)

// basePriority is the fixed preference order for base locale selection.
var basePriority = []string{"pt", "en", "es", "ru", "fr", "de"}

// ResolveBaseLocale picks the locale treated as ground truth for
// untranslated and placeholder comparisons: the first priority-list locale
// whose file exists, else the first .json file in sorted directory order,
// else "". Re-evaluated on every call so that file additions and removals
// take effect immediately.
func ResolveBaseLocale(sourcePath string) string {
	if sourcePath == "" {
		return ""
	}

	for _, locale := range basePriority {
		if _, err := os.Stat(filepath.Join(sourcePath, locale+".json")); err == nil {
			return locale
		}
	}

	entries, err := os.ReadDir(sourcePath)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasSuffix(name, ".json") {
			return strings.TrimSuffix(name, ".json")
		}
	}
	return ""
}
