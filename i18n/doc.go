// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n provides internationalisation utilities backed by GNU gettext
.po catalogues. It translates the system's own messages (command replies and
the fixed fallback windows) across locales and supports both context and
plural forms. Dialog markup itself is translated through the per-locale
dictionaries in core/dictionary, not through this package.

# Quick start

Use the original English text as the msgid; do not invent keys.

Translate strings with calls such as:

	i18n.Tr(ctx, "Invalid language or country parameters.")
	i18n.TrC(ctx, "command", "Usage: .setlang <language> <country>") // disambiguation via context
	i18n.TrN(ctx, "{{.Count}} entry", "{{.Count}} entries", n, "Count", n)
	i18n.TrFor("pt_BR", "Html was too long.")

The tag used by Tr comes from the context, see [WithTag] and [FromRequest].
[TrFor] takes a dictionary locale name instead.

# Missing translations

By default, missing translations return the msgid unchanged. When
StrictMissingKeys is enabled, missing lookups are logged once
per locale+key and the returned text is visibly wrapped as "⟦...⟧".

# Formatting

Translations can include placeholders that are processed by Go's standard
text/template package. Provide substitutions as alternating key-value pairs
to any of the Tr functions:

	i18n.Tr(ctx, "Language changed to: {{.Language}}", "Language", name)

Numbers are not localised automatically; convert values to strings
yourself if you need locale-specific presentation.
*/
package i18n
