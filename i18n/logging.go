// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/Dhousefe/aCisDsec/config"
)

// Logger is the logger used by package i18n.
var Logger zerolog.Logger

// reported holds the "locale\x00key" pairs already logged as missing.
var reported sync.Map

func strictMissingKeys() bool {
	return config.Global.Internationalization.StrictMissingKeys
}

// reportMissing warns about a missing translation once per locale and key.
func reportMissing(tag language.Tag, key string) {
	// Variants and extensions would split one locale into several entries.
	b, s, r := tag.Raw()
	stripped, _ := language.Compose(b, s, r)

	if _, seen := reported.LoadOrStore(stripped.String()+"\x00"+key, struct{}{}); seen {
		return
	}

	Logger.Warn().
		Str("locale", stripped.String()).
		Str("key", key).
		Msg("Missing i18n translation")
}
