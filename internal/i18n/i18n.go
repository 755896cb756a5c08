// Package i18n looks up interface strings from YAML locale catalogs.
package i18n

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type contextKey string

const localeKey = contextKey("locale")

// Translator holds one flattened catalog per locale.
type Translator struct {
	catalogs      map[string]map[string]string
	defaultLocale string
}

// Load reads every .yml file in dir. Each file has a single top-level key
// naming its locale, Rails style.
func Load(fsys fs.FS, dir, defaultLocale string) (*Translator, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading locale directory: %w", err)
	}

	t := &Translator{
		catalogs:      make(map[string]map[string]string),
		defaultLocale: defaultLocale,
	}

	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yml" {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading locale %s: %w", e.Name(), err)
		}

		var doc map[string]map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing locale %s: %w", e.Name(), err)
		}

		for locale, tree := range doc {
			catalog := t.catalogs[locale]
			if catalog == nil {
				catalog = make(map[string]string)
				t.catalogs[locale] = catalog
			}
			flatten("", tree, catalog)
		}
	}

	if _, ok := t.catalogs[defaultLocale]; !ok {
		return nil, fmt.Errorf("no catalog for default locale %q", defaultLocale)
	}
	return t, nil
}

func flatten(prefix string, tree map[string]interface{}, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// T returns the message for key in locale, falling back to the default
// locale and then to the key. %{name} placeholders are replaced from vars.
func (t *Translator) T(locale, key string, vars map[string]string) string {
	msg, ok := t.catalogs[locale][key]
	if !ok {
		msg, ok = t.catalogs[t.defaultLocale][key]
	}
	if !ok {
		msg = key
	}

	for name, value := range vars {
		msg = strings.ReplaceAll(msg, "%{"+name+"}", value)
	}
	return msg
}

func (t *Translator) DefaultLocale() string {
	return t.defaultLocale
}

// Locales lists the loaded locales in sorted order.
func (t *Translator) Locales() []string {
	out := make([]string, 0, len(t.catalogs))
	for l := range t.catalogs {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func (t *Translator) Supported(locale string) bool {
	_, ok := t.catalogs[locale]
	return ok
}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

// LocaleFromContext returns the locale named in the request path, or ""
// when the path carried none.
func LocaleFromContext(ctx context.Context) string {
	l, _ := ctx.Value(localeKey).(string)
	return l
}
