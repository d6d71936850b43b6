package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/i18ndesk/i18ndesk/backup"
	"github.com/i18ndesk/i18ndesk/localefile"
	"github.com/i18ndesk/i18ndesk/project"
	"github.com/i18ndesk/i18ndesk/review"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	ledger := review.NewLedger(filepath.Join(root, "review-data"))
	backups := backup.NewWriter(filepath.Join(root, "backups"))
	return NewEngine(ledger, backups), root
}

func testProject(source string) *project.Project {
	return &project.Project{
		ID:         "proj-test",
		Name:       "Test",
		SourceType: project.SourceDirectory,
		SourcePath: source,
	}
}

func writeLocale(t *testing.T, dir, locale, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, locale+".json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTranslations_KeysMatchFileExactly(t *testing.T) {
	e, _ := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"z.last": "um", "a.first": "dois", "m.mid": "tres"}`)

	got, err := e.LoadTranslations(testProject(source), "pt")
	if err != nil {
		t.Fatalf("LoadTranslations: %v", err)
	}

	if got.Count != 3 || len(got.Entries) != 3 {
		t.Fatalf("count = %d, entries = %d", got.Count, len(got.Entries))
	}
	// Entry keys are a bijection with the file's key set, order preserved.
	want := []string{"z.last", "a.first", "m.mid"}
	for i, entry := range got.Entries {
		if entry.Key != want[i] {
			t.Errorf("entry[%d].Key = %s, want %s", i, entry.Key, want[i])
		}
	}
	if got.Name != "Português (Brasil)" {
		t.Errorf("display name = %q", got.Name)
	}
}

func TestLoadTranslations_ScenarioBaseLocalePT(t *testing.T) {
	e, _ := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "en", `{"a": "1", "b": ""}`)
	writeLocale(t, source, "pt", `{"a": "1", "b": "dois"}`)

	// With en and pt both present, pt wins per the priority order.
	got, err := e.LoadTranslations(testProject(source), "en")
	if err != nil {
		t.Fatalf("LoadTranslations: %v", err)
	}

	byKey := map[string]Entry{}
	for _, entry := range got.Entries {
		byKey[entry.Key] = entry
	}

	if !hasKind(byKey["a"].Issues, Untranslated) {
		t.Errorf("entry a (equal to pt) not flagged untranslated: %v", byKey["a"].Issues)
	}
	if !hasKind(byKey["b"].Issues, Empty) {
		t.Errorf("entry b not flagged empty: %v", byKey["b"].Issues)
	}
	if got.ReviewProgress.WithIssues != 2 {
		t.Errorf("withIssues = %d, want 2", got.ReviewProgress.WithIssues)
	}
}

func TestLoadTranslations_ReviewOverlay(t *testing.T) {
	e, _ := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"a": "um", "b": "dois"}`)
	proj := testProject(source)

	if _, err := e.MarkReviewed(proj, "pt", []string{"a"}); err != nil {
		t.Fatalf("MarkReviewed: %v", err)
	}

	got, err := e.LoadTranslations(proj, "pt")
	if err != nil {
		t.Fatalf("LoadTranslations: %v", err)
	}

	for _, entry := range got.Entries {
		wantReviewed := entry.Key == "a"
		if entry.Reviewed != wantReviewed {
			t.Errorf("entry %s reviewed = %v", entry.Key, entry.Reviewed)
		}
	}
	if got.ReviewProgress.Reviewed != 1 {
		t.Errorf("reviewProgress.Reviewed = %d", got.ReviewProgress.Reviewed)
	}
}

func TestLoadTranslations_Errors(t *testing.T) {
	e, _ := newTestEngine(t)

	if _, err := e.LoadTranslations(nil, "en"); !errors.Is(err, ErrNoProject) {
		t.Errorf("nil project: err = %v", err)
	}

	proj := testProject(t.TempDir())
	if _, err := e.LoadTranslations(proj, "missing"); !errors.Is(err, ErrLocaleNotFound) {
		t.Errorf("missing locale: err = %v", err)
	}
}

func TestUpdateTranslation_RoundTripAndBackup(t *testing.T) {
	e, root := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"a": "um", "b": "dois"}`)
	proj := testProject(source)

	result, err := e.UpdateTranslation(proj, "pt", "b", "DOIS")
	if err != nil {
		t.Fatalf("UpdateTranslation: %v", err)
	}
	if !result.Success || result.OldValue != "dois" || result.NewValue != "DOIS" {
		t.Errorf("result = %+v", result)
	}

	got, err := e.LoadTranslations(proj, "pt")
	if err != nil {
		t.Fatal(err)
	}
	if got.Entries[1].Key != "b" || got.Entries[1].Value != "DOIS" {
		t.Errorf("round-trip entry = %+v", got.Entries[1])
	}
	// Untouched keys and order stay intact.
	if got.Entries[0].Key != "a" || got.Entries[0].Value != "um" {
		t.Errorf("untouched entry changed: %+v", got.Entries[0])
	}

	backupDir := filepath.Join(root, "backups", proj.ID)
	entries, err := os.ReadDir(backupDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 backup, got %d (%v)", len(entries), err)
	}

	// The snapshot holds the pre-write state.
	snap, err := localefile.ParseFile(filepath.Join(backupDir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := snap.Get("b"); v != "dois" {
		t.Errorf("backup value = %q, want pre-write %q", v, "dois")
	}
}

func TestUpdateTranslation_IdempotentEffectNewBackupEachCall(t *testing.T) {
	e, root := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"a": "um"}`)
	proj := testProject(source)

	if _, err := e.UpdateTranslation(proj, "pt", "a", "UM"); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(filepath.Join(source, "pt.json"))
	if err != nil {
		t.Fatal(err)
	}

	// Distinct millisecond so the second snapshot gets its own name.
	time.Sleep(2 * time.Millisecond)

	if _, err := e.UpdateTranslation(proj, "pt", "a", "UM"); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(filepath.Join(source, "pt.json"))
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Errorf("repeated update changed on-disk content:\n%q\n%q", first, second)
	}

	entries, err := os.ReadDir(filepath.Join(root, "backups", proj.ID))
	if err != nil || len(entries) != 2 {
		t.Errorf("expected a backup per call, got %d (%v)", len(entries), err)
	}
}

func TestUpdateTranslation_UnknownKey(t *testing.T) {
	e, _ := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"a": "um"}`)

	_, err := e.UpdateTranslation(testProject(source), "pt", "nope", "x")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("unknown key: err = %v", err)
	}

	// The file must be untouched, and no backup written.
	f, err := localefile.ParseFile(filepath.Join(source, "pt.json"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 1 {
		t.Errorf("file changed on failed update")
	}
}

func TestUpdateTranslation_ReviewStatusSurvivesEdit(t *testing.T) {
	// Editing a value does not clear review status; re-review is a manual
	// workflow. This asserts the current behavior on purpose.
	e, _ := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"a": "um"}`)
	proj := testProject(source)

	if _, err := e.MarkReviewed(proj, "pt", []string{"a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.UpdateTranslation(proj, "pt", "a", "novo valor"); err != nil {
		t.Fatal(err)
	}

	got, err := e.LoadTranslations(proj, "pt")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Entries[0].Reviewed {
		t.Error("review status cleared by value edit")
	}
}

func TestBulkUpdate_SkipsMissingKeys(t *testing.T) {
	e, root := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"a": "um", "b": "dois"}`)
	proj := testProject(source)

	result, err := e.BulkUpdateTranslations(proj, "pt", []BulkEntry{
		{Key: "a", Value: "UM"},
		{Key: "ghost", Value: "boo"},
		{Key: "b", Value: "DOIS"},
	})
	if err != nil {
		t.Fatalf("BulkUpdateTranslations: %v", err)
	}
	if result.Updated != 2 {
		t.Errorf("updated = %d, want 2", result.Updated)
	}

	f, err := localefile.ParseFile(filepath.Join(source, "pt.json"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Has("ghost") {
		t.Error("bulk update created a new key")
	}
	if v, _ := f.Get("a"); v != "UM" {
		t.Errorf("a = %q", v)
	}

	entries, err := os.ReadDir(filepath.Join(root, "backups", proj.ID))
	if err != nil || len(entries) != 1 {
		t.Errorf("expected 1 backup for the batch, got %d (%v)", len(entries), err)
	}
}

func TestCompareLocales_MissingSemantics(t *testing.T) {
	e, _ := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "en", `{"shared": "one", "only-en": "x", "blank": ""}`)
	writeLocale(t, source, "pt", `{"shared": "um", "blank": "vazio"}`)

	cmp := e.CompareLocales(testProject(source))

	if cmp.TotalKeys != 3 {
		t.Fatalf("totalKeys = %d, want 3", cmp.TotalKeys)
	}
	if len(cmp.Locales) != 2 {
		t.Fatalf("locales = %v", cmp.Locales)
	}

	byKey := map[string]ComparisonEntry{}
	for _, entry := range cmp.Entries {
		byKey[entry.Key] = entry
	}

	// Present in every locale: no missing field.
	if entry := byKey["shared"]; entry.Missing != nil {
		t.Errorf("shared has missing = %v", entry.Missing)
	}

	// Absent from pt: missing lists exactly pt, and its value is nil.
	entry := byKey["only-en"]
	if len(entry.Missing) != 1 || entry.Missing[0] != "pt" {
		t.Errorf("only-en missing = %v", entry.Missing)
	}
	if entry.Values["pt"] != nil {
		t.Errorf("only-en pt value = %v, want nil", *entry.Values["pt"])
	}
	if entry.Values["en"] == nil || *entry.Values["en"] != "x" {
		t.Errorf("only-en en value = %v", entry.Values["en"])
	}

	// An empty string is a present value, not a missing key.
	if entry := byKey["blank"]; entry.Missing != nil {
		t.Errorf("blank treated as missing: %v", entry.Missing)
	}
}

func TestCompareLocales_NoProject(t *testing.T) {
	e, _ := newTestEngine(t)

	cmp := e.CompareLocales(nil)
	if cmp.TotalKeys != 0 || len(cmp.Locales) != 0 || len(cmp.Entries) != 0 {
		t.Errorf("expected empty comparison, got %+v", cmp)
	}
}

func TestReviewIssues_AggregatesAndSkipsBadLocales(t *testing.T) {
	e, _ := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"a": "um", "b": ""}`)
	writeLocale(t, source, "en", `{"a": "um", "b": "two"}`)
	writeLocale(t, source, "de", `{broken`)

	report := e.ReviewIssues(testProject(source))

	// pt "b" is empty; en "a" equals the pt base value. de is skipped.
	if report.Total != 2 {
		t.Fatalf("total = %d, want 2; issues = %+v", report.Total, report.Issues)
	}
	for _, issue := range report.Issues {
		if issue.Locale == "de" {
			t.Errorf("unparseable locale leaked into report: %+v", issue)
		}
	}
}

func TestProgressStats(t *testing.T) {
	e, _ := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"a": "um", "b": "dois", "c": "tres"}`)
	writeLocale(t, source, "en", `{"a": "one"}`)
	proj := testProject(source)

	if _, err := e.MarkReviewed(proj, "pt", []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}

	stats := e.ProgressStats(proj)
	if stats.LocaleCount != 2 {
		t.Errorf("localeCount = %d", stats.LocaleCount)
	}
	if stats.TotalKeys != 3 {
		t.Errorf("totalKeys = %d, want max locale count 3", stats.TotalKeys)
	}
	if got := stats.Locales["pt"]; got.Total != 3 || got.Reviewed != 2 {
		t.Errorf("pt progress = %+v", got)
	}
}

func TestCompletionStats(t *testing.T) {
	e, _ := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"a": "um", "b": ""}`)
	writeLocale(t, source, "en", `{"a": "one", "b": "two", "c": "three"}`)

	report := e.CompletionStats(testProject(source))
	if report.TotalKeys != 3 {
		t.Errorf("totalKeys = %d, want union 3", report.TotalKeys)
	}

	byCode := map[string]LocaleCompletion{}
	for _, row := range report.Locales {
		byCode[row.Code] = row
	}
	if row := byCode["pt"]; row.Count != 2 || row.EmptyCount != 1 || row.Completion != 50 {
		t.Errorf("pt completion = %+v", row)
	}
	if row := byCode["en"]; row.Completion != 100 {
		t.Errorf("en completion = %+v", row)
	}
}

func TestExportPath(t *testing.T) {
	e, _ := newTestEngine(t)
	source := t.TempDir()
	writeLocale(t, source, "pt", `{"a": "um"}`)

	path, err := e.ExportPath(testProject(source), "pt")
	if err != nil {
		t.Fatalf("ExportPath: %v", err)
	}
	if path != filepath.Join(source, "pt.json") {
		t.Errorf("path = %s", path)
	}

	if _, err := e.ExportPath(nil, "pt"); !errors.Is(err, ErrNoProject) {
		t.Errorf("nil project: err = %v", err)
	}
}

func TestAvailableLocales_Degrades(t *testing.T) {
	e, _ := newTestEngine(t)

	if got := e.AvailableLocales(nil); len(got) != 0 {
		t.Errorf("nil project locales = %v", got)
	}

	proj := testProject("/does/not/exist-i18ndesk")
	if got := e.AvailableLocales(proj); len(got) != 0 {
		t.Errorf("missing dir locales = %v", got)
	}
}
