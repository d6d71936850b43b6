package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/i18ndesk/i18ndesk/backup"
	"github.com/i18ndesk/i18ndesk/langmeta"
	"github.com/i18ndesk/i18ndesk/localefile"
	"github.com/i18ndesk/i18ndesk/project"
	"github.com/i18ndesk/i18ndesk/review"
)

// Entry is one translation key with its review and issue annotations.
// Issues are recomputed on every read, never cached.
type Entry struct {
	Key      string  `json:"key"`
	Value    string  `json:"value"`
	Reviewed bool    `json:"reviewed"`
	Issues   []Issue `json:"issues"`
}

// Progress summarizes review state for one locale.
type Progress struct {
	Total      int `json:"total"`
	Reviewed   int `json:"reviewed"`
	WithIssues int `json:"withIssues"`
}

// LocaleTranslations is the enriched entry list for one locale.
type LocaleTranslations struct {
	Locale         string   `json:"locale"`
	Name           string   `json:"name"`
	Count          int      `json:"count"`
	Entries        []Entry  `json:"entries"`
	ReviewProgress Progress `json:"reviewProgress"`
}

// UpdateResult reports a single-key write.
type UpdateResult struct {
	Success  bool   `json:"success"`
	Key      string `json:"key"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
	Locale   string `json:"locale"`
}

// BulkEntry is one key/value pair in a bulk update.
type BulkEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// BulkResult reports how many keys a bulk update actually touched.
type BulkResult struct {
	Success bool `json:"success"`
	Updated int  `json:"updated"`
}

// ComparisonEntry holds one key's value in every locale. A value is nil
// when that locale lacks the key; Missing lists those locales and is
// omitted when the key is present everywhere.
type ComparisonEntry struct {
	Key     string             `json:"key"`
	Values  map[string]*string `json:"values"`
	Missing []string           `json:"missing,omitempty"`
}

// Comparison is the cross-locale completeness audit.
type Comparison struct {
	TotalKeys int               `json:"totalKeys"`
	Locales   []string          `json:"locales"`
	Entries   []ComparisonEntry `json:"entries"`
}

// ReviewIssue is one flagged entry in the aggregate issue report.
type ReviewIssue struct {
	Locale string  `json:"locale"`
	Key    string  `json:"key"`
	Value  string  `json:"value"`
	Issues []Issue `json:"issues"`
}

// IssueReport aggregates issues across every locale of a project.
type IssueReport struct {
	Total  int           `json:"total"`
	Issues []ReviewIssue `json:"issues"`
}

// ProgressReport is the per-locale review progress overview returned on
// project activation.
type ProgressReport struct {
	Locales     map[string]Progress `json:"locales"`
	TotalKeys   int                 `json:"totalKeys"`
	LocaleCount int                 `json:"localeCount"`
}

// LocaleCompletion is one row of the completion report.
type LocaleCompletion struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Exists     bool   `json:"exists"`
	Count      int    `json:"count"`
	EmptyCount int    `json:"emptyCount"`
	Completion int    `json:"completion"`
}

// CompletionReport summarizes translation completeness per locale.
type CompletionReport struct {
	Locales   []LocaleCompletion `json:"locales"`
	TotalKeys int                `json:"totalKeys"`
}

// Engine composes the locale store, review ledger, issue detector and base
// locale resolver. It is a stateless pipeline: every call receives the
// project it operates on. Mutating writes to the same locale file are
// serialized through a per-file mutex, closing the read-modify-write race
// of concurrent updates.
type Engine struct {
	ledger  *review.Ledger
	backups *backup.Writer

	mu        sync.Mutex
	fileLocks map[string]*sync.Mutex
}

// NewEngine returns an engine using the given review ledger and backup
// writer.
func NewEngine(ledger *review.Ledger, backups *backup.Writer) *Engine {
	return &Engine{
		ledger:    ledger,
		backups:   backups,
		fileLocks: make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lockFor(path string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.fileLocks[path]
	if !ok {
		l = &sync.Mutex{}
		e.fileLocks[path] = l
	}
	return l
}

func requireProject(proj *project.Project) error {
	if proj == nil || proj.SourcePath == "" {
		return ErrNoProject
	}
	return nil
}

func localePath(proj *project.Project, locale string) string {
	return filepath.Join(proj.SourcePath, locale+".json")
}

// loadLocaleData reads a locale's key/value map, degrading to an empty map
// on any read or parse failure. Base-dependent rules must never abort an
// analysis.
func loadLocaleData(sourcePath, locale string) map[string]string {
	if sourcePath == "" || locale == "" {
		return map[string]string{}
	}
	f, err := localefile.ParseFile(filepath.Join(sourcePath, locale+".json"))
	if err != nil {
		return map[string]string{}
	}
	return f.Values
}

// AvailableLocales lists the locale files of a project's source directory.
// Degrades to an empty list when the project or its source path is absent.
func (e *Engine) AvailableLocales(proj *project.Project) []project.LocaleInfo {
	if proj == nil || proj.SourcePath == "" {
		return []project.LocaleInfo{}
	}
	return project.DetectLocales(proj.SourcePath)
}

// LoadTranslations loads a locale's entries in file order, overlays the
// review ledger, and annotates every entry with freshly detected issues.
func (e *Engine) LoadTranslations(proj *project.Project, locale string) (*LocaleTranslations, error) {
	if err := requireProject(proj); err != nil {
		return nil, err
	}

	path := localePath(proj, locale)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s.json", ErrLocaleNotFound, locale)
	}

	f, err := localefile.ParseFile(path)
	if err != nil {
		return nil, err
	}

	status := e.ledger.Load(proj.ID, locale)
	baseLocale := ResolveBaseLocale(proj.SourcePath)
	baseData := loadLocaleData(proj.SourcePath, baseLocale)

	entries := make([]Entry, 0, f.Len())
	withIssues := 0
	for _, key := range f.Keys() {
		value := f.Values[key]
		issues := Detect(key, value, locale, baseLocale, baseData)
		if len(issues) > 0 {
			withIssues++
		}
		entries = append(entries, Entry{
			Key:      key,
			Value:    value,
			Reviewed: status.Contains(key),
			Issues:   issues,
		})
	}

	return &LocaleTranslations{
		Locale:  locale,
		Name:    langmeta.Name(locale),
		Count:   len(entries),
		Entries: entries,
		ReviewProgress: Progress{
			Total:      len(entries),
			Reviewed:   len(status.Reviewed),
			WithIssues: withIssues,
		},
	}, nil
}

// UpdateTranslation overwrites the value of one existing key, snapshotting
// the pre-write file state first. The key must already exist: this edits
// values, not key sets.
func (e *Engine) UpdateTranslation(proj *project.Project, locale, key, newValue string) (*UpdateResult, error) {
	if err := requireProject(proj); err != nil {
		return nil, err
	}

	path := localePath(proj, locale)
	lock := e.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s.json", ErrLocaleNotFound, locale)
	}
	f, err := localefile.ParseFile(path)
	if err != nil {
		return nil, err
	}

	oldValue, ok := f.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrKeyNotFound, key, locale)
	}

	if _, err := e.backups.Create(proj.ID, proj.SourcePath, locale); err != nil {
		return nil, fmt.Errorf("backing up %s: %w", locale, err)
	}

	f.Set(key, newValue)
	if err := f.WriteFile(path); err != nil {
		return nil, err
	}

	return &UpdateResult{
		Success:  true,
		Key:      key,
		OldValue: oldValue,
		NewValue: newValue,
		Locale:   locale,
	}, nil
}

// BulkUpdateTranslations applies many key/value updates in one
// backup-then-rewrite pass. Keys not present in the file are silently
// skipped; only actual updates are counted. New keys are never created.
func (e *Engine) BulkUpdateTranslations(proj *project.Project, locale string, updates []BulkEntry) (*BulkResult, error) {
	if err := requireProject(proj); err != nil {
		return nil, err
	}

	path := localePath(proj, locale)
	lock := e.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s.json", ErrLocaleNotFound, locale)
	}
	f, err := localefile.ParseFile(path)
	if err != nil {
		return nil, err
	}

	if _, err := e.backups.Create(proj.ID, proj.SourcePath, locale); err != nil {
		return nil, fmt.Errorf("backing up %s: %w", locale, err)
	}

	updated := 0
	for _, u := range updates {
		if f.Set(u.Key, u.Value) {
			updated++
		}
	}

	if err := f.WriteFile(path); err != nil {
		return nil, err
	}

	return &BulkResult{Success: true, Updated: updated}, nil
}

// CompareLocales builds the union of keys across every locale and records
// each locale's value (nil when the key is absent). Keys appear in
// first-seen order. Unreadable locale files are skipped: partial results
// beat total failure.
func (e *Engine) CompareLocales(proj *project.Project) *Comparison {
	cmp := &Comparison{Locales: []string{}, Entries: []ComparisonEntry{}}

	if proj == nil || proj.SourcePath == "" {
		return cmp
	}

	locales := e.AvailableLocales(proj)
	data := make(map[string]*localefile.File, len(locales))
	var keyOrder []string
	seen := make(map[string]struct{})

	for _, info := range locales {
		cmp.Locales = append(cmp.Locales, info.Code)
		f, err := localefile.ParseFile(filepath.Join(proj.SourcePath, info.File))
		if err != nil {
			continue
		}
		data[info.Code] = f
		for _, k := range f.Keys() {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keyOrder = append(keyOrder, k)
			}
		}
	}

	for _, key := range keyOrder {
		entry := ComparisonEntry{Key: key, Values: make(map[string]*string, len(locales))}
		for _, info := range locales {
			f := data[info.Code]
			if f == nil {
				entry.Values[info.Code] = nil
				entry.Missing = append(entry.Missing, info.Code)
				continue
			}
			if v, ok := f.Get(key); ok {
				value := v
				entry.Values[info.Code] = &value
			} else {
				entry.Values[info.Code] = nil
				entry.Missing = append(entry.Missing, info.Code)
			}
		}
		cmp.Entries = append(cmp.Entries, entry)
	}

	cmp.TotalKeys = len(keyOrder)
	return cmp
}

// ReviewIssues aggregates every locale's issue list into one flat report.
// Locales that fail to load are skipped without aborting the aggregation.
func (e *Engine) ReviewIssues(proj *project.Project) *IssueReport {
	report := &IssueReport{Issues: []ReviewIssue{}}

	for _, info := range e.AvailableLocales(proj) {
		translations, err := e.LoadTranslations(proj, info.Code)
		if err != nil {
			continue
		}
		for _, entry := range translations.Entries {
			if len(entry.Issues) == 0 {
				continue
			}
			report.Issues = append(report.Issues, ReviewIssue{
				Locale: info.Code,
				Key:    entry.Key,
				Value:  entry.Value,
				Issues: entry.Issues,
			})
		}
	}

	report.Total = len(report.Issues)
	return report
}

// MarkReviewed idempotently adds keys to the project+locale review ledger
// and persists immediately. Returns the resulting reviewed count.
func (e *Engine) MarkReviewed(proj *project.Project, locale string, keys []string) (int, error) {
	if proj == nil {
		return 0, ErrNoProject
	}
	return e.ledger.Mark(proj.ID, locale, keys)
}

// ReviewStatus returns the persisted review ledger for a locale, empty when
// no project is selected or nothing was ever marked.
func (e *Engine) ReviewStatus(proj *project.Project, locale string) *review.Status {
	if proj == nil {
		return &review.Status{Reviewed: []string{}}
	}
	return e.ledger.Load(proj.ID, locale)
}

// ExportPath returns the on-disk path of a locale file for export.
func (e *Engine) ExportPath(proj *project.Project, locale string) (string, error) {
	if err := requireProject(proj); err != nil {
		return "", err
	}
	return localePath(proj, locale), nil
}

// ProgressStats builds the per-locale review progress overview. TotalKeys
// is the largest locale key count; locales that fail to load are skipped.
func (e *Engine) ProgressStats(proj *project.Project) *ProgressReport {
	report := &ProgressReport{Locales: map[string]Progress{}}

	for _, info := range e.AvailableLocales(proj) {
		translations, err := e.LoadTranslations(proj, info.Code)
		if err != nil {
			continue
		}
		report.Locales[info.Code] = translations.ReviewProgress
		if translations.Count > report.TotalKeys {
			report.TotalKeys = translations.Count
		}
		report.LocaleCount++
	}

	return report
}

// CompletionStats reports per-locale key/empty counts and completion
// percentage, with the union key count across all locales.
func (e *Engine) CompletionStats(proj *project.Project) *CompletionReport {
	report := &CompletionReport{Locales: []LocaleCompletion{}}

	if proj == nil || proj.SourcePath == "" {
		return report
	}

	allKeys := make(map[string]struct{})
	for _, info := range e.AvailableLocales(proj) {
		row := LocaleCompletion{Code: info.Code, Name: info.Name}

		f, err := localefile.ParseFile(filepath.Join(proj.SourcePath, info.File))
		if err != nil {
			report.Locales = append(report.Locales, row)
			continue
		}

		for _, k := range f.Keys() {
			allKeys[k] = struct{}{}
		}
		total, empty := f.Stats()
		row.Exists = true
		row.Count = total
		row.EmptyCount = empty
		if total > 0 {
			row.Completion = int(float64(total-empty)/float64(total)*100 + 0.5)
		}
		report.Locales = append(report.Locales, row)
	}

	report.TotalKeys = len(allKeys)
	return report
}
