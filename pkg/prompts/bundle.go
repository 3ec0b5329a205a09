// Package prompts loads prompt bundles from YAML documents. A bundle maps
// dotted keys such as "date.request_value" to format strings, letting an
// application restyle every system act without touching control code.
package prompts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bundle is an immutable key-to-template mapping. It implements
// ports.PromptSource.
type Bundle struct {
	entries map[string]string
}

// Load parses a YAML document into a bundle. Nested mappings flatten into
// dotted keys, so
//
//	date:
//	  request_value: "Which day works for you?"
//
// yields the key "date.request_value".
func Load(data []byte) (*Bundle, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing prompt bundle: %w", err)
	}
	entries := make(map[string]string)
	if err := flatten("", raw, entries); err != nil {
		return nil, err
	}
	return &Bundle{entries: entries}, nil
}

// LoadFile reads and parses a bundle from disk.
func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt bundle: %w", err)
	}
	return Load(data)
}

// Merge overlays other on top of b, returning a new bundle. Keys in other
// win, which lets a locale bundle override a base bundle.
func (b *Bundle) Merge(other *Bundle) *Bundle {
	merged := make(map[string]string, len(b.entries)+len(other.entries))
	for k, v := range b.entries {
		merged[k] = v
	}
	for k, v := range other.entries {
		merged[k] = v
	}
	return &Bundle{entries: merged}
}

// Get returns the prompt for key formatted with args, or "" if absent.
func (b *Bundle) Get(key string, args ...any) string {
	tpl, ok := b.entries[key]
	if !ok {
		return ""
	}
	if len(args) == 0 || !strings.Contains(tpl, "%") {
		return tpl
	}
	return fmt.Sprintf(tpl, args...)
}

// Has reports whether key exists in the bundle.
func (b *Bundle) Has(key string) bool {
	_, ok := b.entries[key]
	return ok
}

// Keys returns the bundle's keys in sorted order.
func (b *Bundle) Keys() []string {
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("prompt bundle key %q: expected string or mapping, got %T", key, v)
		}
	}
	return nil
}
