// Package i18n provides internationalization support for i18ndesk itself.
//
// It wraps the gotext library to provide simple T() and N() functions for
// translating i18ndesk's user-facing strings. Translations are embedded in
// the binary via //go:embed and loaded at startup via Init().
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the translation catalogs.
// Directory structure: locales/{lang}/LC_MESSAGES/i18ndesk.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for i18ndesk.
const domain = "i18ndesk"

var po *gotext.Locale

// Init initializes the i18n system. If lang is empty, it auto-detects from
// the environment variables LANGUAGE, LC_ALL, LC_MESSAGES, LANG (in that
// order, matching GNU gettext behavior). Call once at startup.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a string. If no translation is available, returns the
// original string unchanged.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	// msgid is a message key, not a printf format string; calling Get
	// through a method value keeps vet's printf check from treating it
	// as one. gotext skips Sprintf when no vars are passed.
	get := po.Get
	return get(msgid)
}

// N translates a string with plural forms.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage reads environment variables to determine the user's
// preferred language, following GNU gettext conventions.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			if env == "LANGUAGE" {
				parts := strings.SplitN(val, ":", 2)
				val = parts[0]
			}
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}
