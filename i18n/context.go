// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type tagKey struct{}

// LangParam is the query parameter that overrides Accept-Language. It takes a
// BCP 47 tag, a locale name such as "pt_BR", or "auto".
const LangParam = "lang"

// WithTag returns a copy of ctx whose translations use t.
func WithTag(ctx context.Context, t language.Tag) context.Context {
	return context.WithValue(ctx, tagKey{}, t)
}

// TagFrom returns the tag stored by [WithTag], or the [BaseLocale] tag when ctx
// is nil or carries none. It never returns the zero tag.
func TagFrom(ctx context.Context) language.Tag {
	if ctx == nil {
		return baseTag
	}

	if t, ok := ctx.Value(tagKey{}).(language.Tag); ok && t != (language.Tag{}) {
		return t
	}

	return baseTag
}

// FromRequest picks the loaded language that best serves r. The [LangParam]
// query parameter comes first, then Accept-Language; "auto" skips the
// parameter. Without a request or loaded catalogues it returns the base tag.
func FromRequest(r *http.Request) language.Tag {
	c := active.Load()
	if r == nil || c == nil {
		return baseTag
	}

	var preferred []string

	if q := r.URL.Query().Get(LangParam); q != "" && !strings.EqualFold(q, "auto") {
		preferred = append(preferred, strings.ReplaceAll(q, "_", "-"))
	}

	if al := r.Header.Get("Accept-Language"); al != "" {
		preferred = append(preferred, al)
	}

	tag, _ := language.MatchStrings(c.matcher, preferred...)

	return tag
}

// WithRequest is WithTag(ctx, FromRequest(r)).
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return WithTag(ctx, FromRequest(r))
}
