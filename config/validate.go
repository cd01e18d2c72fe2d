// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// validation errors.
var (
	errUnixSocketWithHostPort       = errors.New("unix socket configured - cannot specify Host and Port simultaneously")
	errUnixSocketInvalidPermissions = errors.New("invalid Basic.UnixSocketPermissions value")
	errUnixSocketUserDoesNotExist   = errors.New("user does not exist")
	errUnixSocketGroupDoesNotExist  = errors.New("group does not exist")
	errInvalidLocale                = errors.New("invalid locale")
	errInvalidMaxLength             = errors.New("Translation.MaxLength must be positive")
	errInvalidDictionaryPattern     = errors.New("Translation.DictionaryPattern must contain %s exactly once")
	errEmptyDictionaryDir           = errors.New("Translation.DictionaryDir cannot be empty")
	errInvalidReloadRate            = errors.New("Admin.ReloadsPerMinute and Admin.ReloadBurst must be positive")
	errInvalidShutdownSeconds       = errors.New("Admin.ShutdownSeconds cannot be negative")
	errInvalidExtractConcurrency    = errors.New("Extract.Concurrency must be positive")
	errInvalidLogLevel              = errors.New("invalid Log.Level")
	errInvalidLogFormat             = errors.New("invalid Log.Format")
)

var (
	fileModeOctalRegexp  = regexp.MustCompile(`^0?[0-7]{3}$`)
	fileModeStringRegexp = regexp.MustCompile(`^(?:[r-][w-][x-]){3}$`)
	digitsRegexp         = regexp.MustCompile(`^[0-9]+$`)
	localeRegexp         = regexp.MustCompile(`^[a-z]{2,3}(?:_[A-Z]{2})?$`)
)

// validateAndSet validates the server configuration and populates some fields.
func (cfg *ServerConfig) validateAndSet() error {
	// Handle listener configuration
	if cfg.Basic.UnixSocket != "" {
		if cfg.Basic.Host != "" || cfg.Basic.Port != "" {
			return errUnixSocketWithHostPort
		}

		// Handle unix socket permissions
		switch {
		case cfg.Basic.RawUnixSocketPermissions == "":
			cfg.Basic.UnixSocketPermissions = 0o666
		case fileModeOctalRegexp.MatchString(cfg.Basic.RawUnixSocketPermissions):
			rawModeUint64, _ := strconv.ParseUint(cfg.Basic.RawUnixSocketPermissions, 8, 32)

			cfg.Basic.UnixSocketPermissions = os.FileMode(rawModeUint64)
		case fileModeStringRegexp.MatchString(cfg.Basic.RawUnixSocketPermissions):
			mode := os.FileMode(0)

			for i, c := range cfg.Basic.RawUnixSocketPermissions {
				// If permission bit is set
				if c != '-' {
					// Set i-th bit from the end
					const bitsInByte = 8

					mode |= 1 << (bitsInByte - i)
				}
			}

			cfg.Basic.UnixSocketPermissions = mode
		default:
			return errUnixSocketInvalidPermissions
		}

		// Check if user is valid
		if cfg.Basic.UnixSocketUser != "" {
			if digitsRegexp.MatchString(cfg.Basic.UnixSocketUser) {
				if _, err := user.LookupId(cfg.Basic.UnixSocketUser); err != nil {
					return errUnixSocketUserDoesNotExist
				}
			} else {
				if _, err := user.Lookup(cfg.Basic.UnixSocketUser); err != nil {
					return errUnixSocketUserDoesNotExist
				}
			}
		}

		// Check if group is valid
		if cfg.Basic.UnixSocketGroup != "" {
			if digitsRegexp.MatchString(cfg.Basic.UnixSocketGroup) {
				if _, err := user.LookupGroupId(cfg.Basic.UnixSocketGroup); err != nil {
					return errUnixSocketGroupDoesNotExist
				}
			} else {
				if _, err := user.LookupGroup(cfg.Basic.UnixSocketGroup); err != nil {
					return errUnixSocketGroupDoesNotExist
				}
			}
		}
	} else {
		// Set TCP defaults
		if cfg.Basic.Host == "" {
			cfg.Basic.Host = "localhost"
			log.Info().
				Str("host", cfg.Basic.Host).
				Msg("Binding to default host")
		}

		if cfg.Basic.Port == "" {
			cfg.Basic.Port = "8383"
			log.Info().
				Str("port", cfg.Basic.Port).
				Msg("Using default port")
		}
	}

	if err := validateLocale(cfg.Translation.DefaultLocale); err != nil {
		return fmt.Errorf("Translation.DefaultLocale: %w", err)
	}

	for _, locale := range cfg.Translation.SupportedLocales {
		if err := validateLocale(locale); err != nil {
			return fmt.Errorf("Translation.SupportedLocales: %w", err)
		}
	}

	if !slices.Contains(cfg.Translation.SupportedLocales, cfg.Translation.DefaultLocale) {
		cfg.Translation.SupportedLocales = append(cfg.Translation.SupportedLocales, cfg.Translation.DefaultLocale)
	}

	if cfg.Translation.MaxLength <= 0 {
		return errInvalidMaxLength
	}

	if cfg.Translation.DictionaryDir == "" {
		return errEmptyDictionaryDir
	}

	if strings.Count(cfg.Translation.DictionaryPattern, "%s") != 1 {
		return errInvalidDictionaryPattern
	}

	if cfg.Admin.ReloadsPerMinute <= 0 || cfg.Admin.ReloadBurst <= 0 {
		return errInvalidReloadRate
	}

	if cfg.Admin.ShutdownSeconds < 0 {
		return errInvalidShutdownSeconds
	}

	if cfg.Extract.Concurrency <= 0 {
		return errInvalidExtractConcurrency
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "console", "json":
		// valid
	default:
		return fmt.Errorf("%w: %q", errInvalidLogFormat, cfg.Log.Format)
	}

	return nil
}

// validateLocale accepts dictionary locale names such as "pt_BR" or "es".
func validateLocale(locale string) error {
	if !localeRegexp.MatchString(locale) {
		return fmt.Errorf("%w: %q", errInvalidLocale, locale)
	}

	if _, err := language.Parse(strings.ReplaceAll(locale, "_", "-")); err != nil {
		return fmt.Errorf("%w: %q: %w", errInvalidLocale, locale, err)
	}

	return nil
}
