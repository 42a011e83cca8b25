// Package i18n holds the message catalogs for every user-visible string.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLocale is the locale used when none is configured
const DefaultLocale = "ar"

// Catalog is one locale's messages
type Catalog struct {
	Lang     string            `yaml:"lang"`
	Dir      string            `yaml:"dir"`
	Messages map[string]string `yaml:"messages"`
}

// Load reads the embedded catalog for locale ("ar", "en", ...).
// Region suffixes like "en-US" resolve to the base language.
func Load(locale string) (*Catalog, error) {
	base := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(base, "-_"); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = DefaultLocale
	}

	data, err := localeFS.ReadFile("locales/" + base + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unsupported locale %q (available: %s)", locale, strings.Join(Available(), ", "))
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse locale %s: %w", base, err)
	}
	if cat.Dir == "" {
		cat.Dir = "ltr"
	}
	return &cat, nil
}

// MustLoad is Load for locales known to be embedded
func MustLoad(locale string) *Catalog {
	cat, err := Load(locale)
	if err != nil {
		panic(err)
	}
	return cat
}

// Available lists the embedded locales
func Available() []string {
	entries, _ := localeFS.ReadDir("locales")
	var out []string
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// T returns the message for key, formatted with args when given.
// Unknown keys come back verbatim so a gap shows up on the page instead of blank text.
func (c *Catalog) T(key string, args ...interface{}) string {
	msg, ok := c.Messages[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Keys returns the sorted message keys
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Messages))
	for k := range c.Messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
