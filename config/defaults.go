// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

const (
	// Default ceiling for processed markup, in characters.
	defaultMaxLength = 8192
	// Default number of dictionary reloads allowed per minute.
	defaultReloadsPerMinute = 6
	// Default seconds allowed for in-flight admin requests on shutdown.
	defaultShutdownSeconds = 5
	// Default number of files extracted at once.
	defaultExtractConcurrency = 4
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	cfg.Basic.Host = "localhost"
	cfg.Basic.Port = "8383"

	cfg.Translation.Enabled = true
	cfg.Translation.DefaultLocale = "pt_BR"
	cfg.Translation.SupportedLocales = []string{"pt_BR", "en_US", "es_ES"}
	cfg.Translation.MaxLength = defaultMaxLength
	cfg.Translation.DataRoot = "./data"
	cfg.Translation.DictionaryDir = "./config/traducao"
	cfg.Translation.DictionaryPattern = "messages_%s.properties"
	cfg.Translation.RulesFile = "./config/traducao/config.properties"
	cfg.Translation.Materialize = true

	cfg.Cache.Compress = true

	cfg.Admin.Enabled = true
	cfg.Admin.ReloadsPerMinute = defaultReloadsPerMinute
	cfg.Admin.ReloadBurst = 1
	cfg.Admin.ShutdownSeconds = defaultShutdownSeconds

	cfg.Extract.Concurrency = defaultExtractConcurrency

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Internationalization.StrictMissingKeys = false
}
