// Package localefile implements reading and writing of flat locale JSON files.
//
// A locale file is a single JSON object mapping translation keys to string
// values:
//
//	{
//	    "app.title": "Gerenciador de Traduções",
//	    "app.save": ""
//	}
//
// Empty string values mean untranslated. Key order in the file is meaningful
// to reviewers, so parsing preserves it and writing emits keys in the same
// order they were read.
package localefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File represents a parsed locale file.
type File struct {
	Values map[string]string
	// keys preserves the original key order from the file.
	keys []string
}

// New returns an empty locale file.
func New() *File {
	return &File{Values: make(map[string]string)}
}

// ParseFile reads and parses a locale JSON file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// Parse parses locale JSON data, preserving key order via json.Decoder.
// Values must be strings; anything else is a parse error.
func Parse(data []byte) (*File, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))

	t, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parsing JSON: expected object, got %v", t)
	}

	f := New()

	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("parsing JSON: expected string key, got %T", kt)
		}

		vt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		value, ok := vt.(string)
		if !ok {
			return nil, fmt.Errorf("parsing JSON: expected string value for key %q, got %T", key, vt)
		}

		if _, seen := f.Values[key]; !seen {
			f.keys = append(f.keys, key)
		}
		f.Values[key] = value
	}

	// Closing brace, then nothing else: the file must be a single map.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parsing JSON: trailing data after object")
	}

	return f, nil
}

// Keys returns the translation keys in their original file order.
func (f *File) Keys() []string {
	if len(f.keys) > 0 {
		return f.keys
	}

	// Fallback: sorted keys.
	keys := make([]string, 0, len(f.Values))
	for k := range f.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value for a key and whether the key exists.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.Values[key]
	return v, ok
}

// Has reports whether the key exists in the file.
func (f *File) Has(key string) bool {
	_, ok := f.Values[key]
	return ok
}

// Set overwrites the value of an existing key. It never creates new keys;
// the return value reports whether the key was present.
func (f *File) Set(key, value string) bool {
	if _, ok := f.Values[key]; !ok {
		return false
	}
	f.Values[key] = value
	return true
}

// Len returns the number of keys.
func (f *File) Len() int {
	return len(f.Values)
}

// Stats returns (total, empty) counts. A value counts as empty when it
// trims to the empty string.
func (f *File) Stats() (total, empty int) {
	total = len(f.Values)
	for _, v := range f.Values {
		if strings.TrimSpace(v) == "" {
			empty++
		}
	}
	return
}

// Marshal produces pretty-printed JSON with 2-space indentation, original
// key order, and a trailing newline.
func (f *File) Marshal() ([]byte, error) {
	var b strings.Builder
	b.WriteString("{")

	keys := f.Keys()
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("\n  ")
		b.WriteString(jsonString(k))
		b.WriteString(": ")
		b.WriteString(jsonString(f.Values[k]))
	}
	if len(keys) > 0 {
		b.WriteByte('\n')
	}
	b.WriteString("}\n")

	return []byte(b.String()), nil
}

// WriteFile writes the locale file back to disk, creating parent
// directories as needed.
func (f *File) WriteFile(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// jsonString encodes one JSON string, without the HTML escaping of
// json.Marshal: these files are human-edited, so "<" stays "<". Control
// characters get \u00XX escapes, keeping the output parseable by any
// JSON reader.
func jsonString(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail; invalid UTF-8 is replaced.
	enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}
