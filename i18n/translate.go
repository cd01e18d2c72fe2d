// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

// Vars holds the named values substituted into a translated message.
type Vars map[string]any

// UserError is an error whose message has already been translated and can be
// shown to the person who caused it.
type UserError struct {
	msg string
}

// NewUserError translates msgid for the tag in ctx and wraps it in a UserError.
func NewUserError(ctx context.Context, msgid string, kv ...any) *UserError {
	return &UserError{msg: Tr(ctx, msgid, kv...)}
}

func (e *UserError) Error() string {
	return e.msg
}

// Tr translates msgid, the original English text, for the tag carried by ctx.
// Key-value pairs fill {{.Name}} placeholders in the result.
//
// A msgid without a translation is returned unchanged, or wrapped in "⟦⟧"
// in strict mode.
func Tr(ctx context.Context, msgid string, kv ...any) string {
	return message{id: msgid}.translate(ctx, kv)
}

// TrC is [Tr] with a disambiguating gettext context (pgettext).
func TrC(ctx context.Context, contextKey, msgid string, kv ...any) string {
	return message{context: contextKey, id: msgid}.translate(ctx, kv)
}

// TrN translates the singular or plural form for n (ngettext). Without a
// translation the singular is used for n == 1 and the plural otherwise.
func TrN(ctx context.Context, singular, plural string, n int, kv ...any) string {
	return message{id: singular, plural: plural, n: n, counted: true}.translate(ctx, kv)
}

// TrNC is [TrN] with a disambiguating gettext context (npgettext).
func TrNC(ctx context.Context, contextKey, singular, plural string, n int, kv ...any) string {
	return message{context: contextKey, id: singular, plural: plural, n: n, counted: true}.translate(ctx, kv)
}

// TrFor is [Tr] for callers that only know a dictionary locale name such as "pt_BR".
func TrFor(locale, msgid string, kv ...any) string {
	return Tr(WithTag(context.Background(), TagForLocale(locale)), msgid, kv...)
}

// message is one gettext lookup.
type message struct {
	context string
	id      string
	plural  string
	n       int
	counted bool
}

// fallback is the text shown when no catalogue has the message.
func (m message) fallback() string {
	if m.counted && m.n != 1 {
		return m.plural
	}

	return m.id
}

// lookup returns the translation held by loc, if any.
//
// Singular messages are looked up as the n == 1 form. gotext checks plain
// msgids with n == 0, which plural rules such as "n != 1" map to msgstr[1],
// and singular entries have no msgstr[1]. Going through the N variants also
// keeps the msgid out of gotext's printf-style format argument.
func (m message) lookup(loc *gotext.Locale) (string, bool) {
	if loc == nil {
		return "", false
	}

	plural, n := m.plural, m.n
	if !m.counted {
		plural, n = m.id, 1
	}

	if m.context != "" {
		if loc.IsTranslatedNDC(poDomain, m.id, n, m.context) {
			return loc.GetNDC(poDomain, m.id, plural, n, m.context), true
		}

		return "", false
	}

	if loc.IsTranslatedND(poDomain, m.id, n) {
		return loc.GetND(poDomain, m.id, plural, n), true
	}

	return "", false
}

func (m message) translate(ctx context.Context, kv []any) string {
	loc, tag := active.Load().lookup(TagFrom(ctx))

	text, ok := m.lookup(loc)
	if !ok {
		text = m.fallback()

		if strictMissingKeys() {
			reportMissing(tag, m.logKey())

			text = "⟦" + text + "⟧"
		}
	}

	return templates.execute(tag, text, pairs(kv))
}

// logKey names the message like gettext does: "ctx<EOT>msgid".
func (m message) logKey() string {
	if m.context != "" {
		return m.context + gotext.EotSeparator + m.id
	}

	return m.id
}

// templateSet compiles each distinct translated text once.
type templateSet struct {
	mu     sync.RWMutex
	byText map[string]*template.Template
}

var templates = &templateSet{byText: map[string]*template.Template{}}

func (s *templateSet) get(text string) (*template.Template, error) {
	s.mu.RLock()
	tmpl, ok := s.byText[text]
	s.mu.RUnlock()

	if ok {
		return tmpl, nil
	}

	tmpl, err := template.New("msg").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.byText[text] = tmpl
	s.mu.Unlock()

	return tmpl, nil
}

func (s *templateSet) reset() {
	s.mu.Lock()
	s.byText = map[string]*template.Template{}
	s.mu.Unlock()
}

// execute fills the placeholders of text. Text without "{{" is returned as is;
// broken templates are logged and returned unformatted.
func (s *templateSet) execute(tag language.Tag, text string, vars Vars) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	tmpl, err := s.get(text)
	if err == nil {
		var b strings.Builder
		if err = tmpl.Execute(&b, map[string]any(vars)); err == nil {
			return b.String()
		}
	}

	if strictMissingKeys() {
		return "⟦" + text + "⟧"
	}

	Logger.Warn().Err(err).Str("locale", tag.String()).Str("text", text).Msg("Failed to format translation")

	return text
}

// pairs builds Vars from alternating key, value arguments. A malformed list
// is a programming error and panics.
func pairs(kv []any) Vars {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("i18n: odd number of key-value arguments (%d)", len(kv)))
	}

	vars := make(Vars, len(kv)/2)

	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("i18n: key %v is a %T, want string", kv[i], kv[i]))
		}

		vars[key] = kv[i+1]
	}

	return vars
}
