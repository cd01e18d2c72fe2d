// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"
)

/*
TestLoad focuses on verifying main functionality (e.g. fallback when invalid input),
and *shouldn't* need exhaustive scenarios.

These tests use t.Setenv and therefore cannot run in parallel.
*/

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return path
}

// TestLoad verifies the layering of defaults, environment and validation.
func TestLoad(t *testing.T) {
	tests := []struct {
		name    string            // Description of the test case
		env     map[string]string // Name of the environment variable and its value
		wantErr bool              // Whether an error is expected
	}{
		{
			name: "Valid configuration",
			env: map[string]string{
				"L2I18N_HOST":              "localhost",
				"L2I18N_PORT":              "8383",
				"L2I18N_SUPPORTED_LOCALES": "pt_BR, en_US",
			},
		},
		{
			name:    "Invalid L2I18N_DEFAULT_LOCALE",
			env:     map[string]string{"L2I18N_DEFAULT_LOCALE": "Portuguese"},
			wantErr: true,
		},
		{
			name:    "Invalid L2I18N_MAX_LENGTH",
			env:     map[string]string{"L2I18N_MAX_LENGTH": "0"},
			wantErr: true,
		},
		{
			name:    "Unparseable L2I18N_MAX_LENGTH",
			env:     map[string]string{"L2I18N_MAX_LENGTH": "lots"},
			wantErr: true,
		},
		{
			name:    "Invalid L2I18N_DICTIONARY_PATTERN",
			env:     map[string]string{"L2I18N_DICTIONARY_PATTERN": "messages.properties"},
			wantErr: true,
		},
		{
			name:    "Invalid L2I18N_LOG_LEVEL",
			env:     map[string]string{"L2I18N_LOG_LEVEL": "verbose"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			config := &ServerConfig{}

			err := config.Load("")
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)

				return
			}

			if tt.wantErr {
				return
			}

			if config.Basic.Host != tt.env["L2I18N_HOST"] {
				t.Errorf("Load() Host = %v, want %v", config.Basic.Host, tt.env["L2I18N_HOST"])
			}

			if len(config.Translation.SupportedLocales) != 2 {
				t.Errorf("Load() SupportedLocales = %v, want 2 entries", config.Translation.SupportedLocales)
			}

			if config.Translation.MaxLength != defaultMaxLength {
				t.Errorf("Load() MaxLength = %v, want %v", config.Translation.MaxLength, defaultMaxLength)
			}
		})
	}
}

// TestLoadYAML checks that a YAML file overrides defaults and env overrides the file.
func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
translation:
  defaultLocale: es_ES
  maxLength: 4096
cache:
  compress: false
admin:
  reloadBurst: 3
`)
	t.Setenv("L2I18N_MAX_LENGTH", "2048")

	config := &ServerConfig{}
	if err := config.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Translation.DefaultLocale != "es_ES" {
		t.Errorf("DefaultLocale = %q, want es_ES", config.Translation.DefaultLocale)
	}

	if config.Translation.MaxLength != 2048 {
		t.Errorf("MaxLength = %d, want 2048", config.Translation.MaxLength)
	}

	if config.Cache.Compress {
		t.Error("Compress = true, want false")
	}

	if config.Admin.ReloadBurst != 3 {
		t.Errorf("ReloadBurst = %d, want 3", config.Admin.ReloadBurst)
	}

	if config.Admin.ReloadsPerMinute != defaultReloadsPerMinute {
		t.Errorf("ReloadsPerMinute = %d, want default", config.Admin.ReloadsPerMinute)
	}
}

// TestLoadTOML checks the TOML file format.
func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[translation]
defaultLocale = "en_US"
supportedLocales = ["en_US", "de_DE"]
materialize = false

[extract]
concurrency = 8
`)

	config := &ServerConfig{}
	if err := config.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Translation.DefaultLocale != "en_US" {
		t.Errorf("DefaultLocale = %q, want en_US", config.Translation.DefaultLocale)
	}

	if config.Translation.Materialize {
		t.Error("Materialize = true, want false")
	}

	if config.Extract.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", config.Extract.Concurrency)
	}
}

// TestLoadMalformedFile checks that a broken file is reported.
func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "config.toml", "[translation\nmaxLength = ")

	config := &ServerConfig{}
	if err := config.Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

// TestDefaultLocaleJoinsSupported checks that the default locale is always supported.
func TestDefaultLocaleJoinsSupported(t *testing.T) {
	t.Setenv("L2I18N_DEFAULT_LOCALE", "ja_JP")
	t.Setenv("L2I18N_SUPPORTED_LOCALES", "pt_BR")

	config := &ServerConfig{}
	if err := config.Load(""); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"pt_BR", "ja_JP"}
	if len(config.Translation.SupportedLocales) != 2 ||
		config.Translation.SupportedLocales[0] != want[0] ||
		config.Translation.SupportedLocales[1] != want[1] {
		t.Errorf("SupportedLocales = %v, want %v", config.Translation.SupportedLocales, want)
	}
}
