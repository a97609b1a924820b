// Package i18n localizes user-facing messages. The editor serves English and Arabic users.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed messages/*.json
var messagesFS embed.FS

const (
	LocaleEnglish = "en"
	LocaleArabic  = "ar"
	DefaultLocale = LocaleEnglish
)

// supported is in matcher order; the first entry is the fallback
var (
	supported = []string{LocaleEnglish, LocaleArabic}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Arabic})
)

type localeKey struct{}

// catalog holds every locale flattened to dotted keys, e.g. "issues.empty"
var (
	catalog     map[string]map[string]string
	catalogOnce sync.Once
)

func loadCatalog() map[string]map[string]string {
	catalogOnce.Do(func() {
		catalog = make(map[string]map[string]string, len(supported))
		for _, locale := range supported {
			msgs, err := readLocale(locale)
			if err != nil {
				// embedded at build time; a broken file is a programming error
				panic(err)
			}
			catalog[locale] = msgs
		}
	})
	return catalog
}

func readLocale(locale string) (map[string]string, error) {
	data, err := messagesFS.ReadFile("messages/" + locale + ".json")
	if err != nil {
		return nil, fmt.Errorf("read %s messages: %w", locale, err)
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse %s messages: %w", locale, err)
	}
	flat := make(map[string]string)
	flatten("", tree, flat)
	return flat, nil
}

func flatten(prefix string, tree map[string]interface{}, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]interface{}:
			flatten(key, val, out)
		}
	}
}

// Localizer translates keys for one locale
type Localizer struct {
	locale string
	msgs   map[string]string
}

// NewLocalizer falls back to English for unsupported locales
func NewLocalizer(locale string) *Localizer {
	all := loadCatalog()
	msgs, ok := all[locale]
	if !ok {
		locale, msgs = DefaultLocale, all[DefaultLocale]
	}
	return &Localizer{locale: locale, msgs: msgs}
}

func LocalizerFromContext(ctx context.Context) *Localizer {
	return NewLocalizer(GetLocaleFromContext(ctx))
}

// T translates key, substituting {name} placeholders from params.
// Missing keys fall back to English, then to the key itself.
func (l *Localizer) T(key string, params ...map[string]string) string {
	msg, ok := l.lookup(key)
	if !ok {
		return key
	}
	if len(params) > 0 {
		pairs := make([]string, 0, 2*len(params[0]))
		for k, v := range params[0] {
			pairs = append(pairs, "{"+k+"}", v)
		}
		msg = strings.NewReplacer(pairs...).Replace(msg)
	}
	return msg
}

// Has reports whether key exists in the localizer's locale or the fallback
func (l *Localizer) Has(key string) bool {
	_, ok := l.lookup(key)
	return ok
}

func (l *Localizer) Locale() string {
	return l.locale
}

func (l *Localizer) lookup(key string) (string, bool) {
	if msg, ok := l.msgs[key]; ok {
		return msg, true
	}
	msg, ok := loadCatalog()[DefaultLocale][key]
	return msg, ok
}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// GetLocaleFromContext returns the request locale, English when unset
func GetLocaleFromContext(ctx context.Context) string {
	if locale, ok := ctx.Value(localeKey{}).(string); ok && locale != "" {
		return locale
	}
	return DefaultLocale
}

// ParseAcceptLanguage returns the supported locale that best matches an Accept-Language header
func ParseAcceptLanguage(header string) string {
	if header == "" {
		return DefaultLocale
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}

	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return supported[index]
}
