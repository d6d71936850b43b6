// Package langmeta provides a static locale code → display name registry
// used for locale listings and review reports.
package langmeta

import "strings"

// Registry contains canonical display names. Locale variants (pt_BR, pt-br)
// are resolved in Name() via normalization and base-language fallback.
var Registry = map[string]string{
	"ar":    "العربية",
	"cs":    "Čeština",
	"da":    "Dansk",
	"de":    "Deutsch",
	"el":    "Ελληνικά",
	"en":    "English",
	"en-GB": "English (UK)",
	"en-US": "English (US)",
	"es":    "Español",
	"fi":    "Suomi",
	"fr":    "Français",
	"he":    "עברית",
	"hi":    "हिन्दी",
	"hu":    "Magyar",
	"id":    "Bahasa Indonesia",
	"it":    "Italiano",
	"ja":    "日本語",
	"ko":    "한국어",
	"nl":    "Nederlands",
	"pl":    "Polski",
	"pt":    "Português (Brasil)",
	"pt-PT": "Português (Portugal)",
	"ro":    "Română",
	"ru":    "Русский",
	"sv":    "Svenska",
	"th":    "ไทย",
	"tr":    "Türkçe",
	"uk":    "Українська",
	"vi":    "Tiếng Việt",
	"zh":    "中文",
	"zh-TW": "繁體中文",
}

func canonicalize(code string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Name returns the display name for a locale code, supporting variants like
// pt_BR and pt-br with base-language fallback. Unknown codes fall back to
// the uppercased code itself.
func Name(code string) string {
	if n, ok := Registry[code]; ok {
		return n
	}
	normalized := canonicalize(code)
	if n, ok := Registry[normalized]; ok {
		return n
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if n, ok := Registry[parts[0]]; ok {
			return n
		}
	}
	return strings.ToUpper(code)
}
