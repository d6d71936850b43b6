// Package analysis implements the translation analysis engine: issue
// detection over locale entries, base locale resolution, review overlay,
// cross-locale comparison, and safe mutating writes with backup-before-write
// semantics.
package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind identifies one category of translation issue. The set is stable for
// forward compatibility of serialized issue data; MissingLocale and
// SpecialChars are reserved and not produced by any current rule.
type Kind string

const (
	Empty               Kind = "empty"
	TooLong             Kind = "too_long"
	MissingLocale       Kind = "missing_locale"
	Untranslated        Kind = "untranslated"
	SpecialChars        Kind = "special_chars"
	PlaceholderMismatch Kind = "placeholder_mismatch"
)

// Issue is one detected problem on a translation entry. Multiple issues may
// co-occur on the same entry.
type Issue struct {
	Type    Kind   `json:"type"`
	Message string `json:"message"`
}

// maxValueLength is the threshold for the too_long rule.
const maxValueLength = 500

// placeholderRe matches {{name}} and {name} substitution tokens,
// non-nested, greedy up to the next closing brace.
var placeholderRe = regexp.MustCompile(`\{\{[^}]+\}\}|\{[^}]+\}`)

// Detect runs all issue rules over one entry. Pure: no file access, no
// mutation. baseData is the base locale's key/value map (empty or nil when
// the base locale is unknown or unreadable, which silently disables the
// base-dependent rules). All rules are evaluated independently.
func Detect(key, value, locale, baseLocale string, baseData map[string]string) []Issue {
	var issues []Issue

	if strings.TrimSpace(value) == "" {
		issues = append(issues, Issue{Type: Empty, Message: "Empty value"})
	}

	if value != "" {
		if n := utf8.RuneCountInString(value); n > maxValueLength {
			issues = append(issues, Issue{
				Type:    TooLong,
				Message: fmt.Sprintf("Text too long (%d characters)", n),
			})
		}
	}

	if value != "" && baseLocale != "" && locale != baseLocale {
		if baseValue := baseData[key]; baseValue != "" && value == baseValue {
			issues = append(issues, Issue{
				Type:    Untranslated,
				Message: fmt.Sprintf("Possibly untranslated (same as %s)", strings.ToUpper(baseLocale)),
			})
		}
	}

	if value != "" && baseLocale != "" {
		if baseValue := baseData[key]; baseValue != "" {
			// Count-only comparison: same count with different names
			// passes on purpose.
			got := len(placeholderRe.FindAllString(value, -1))
			want := len(placeholderRe.FindAllString(baseValue, -1))
			if got != want {
				issues = append(issues, Issue{
					Type:    PlaceholderMismatch,
					Message: "Placeholders differ from the base locale",
				})
			}
		}
	}

	return issues
}
