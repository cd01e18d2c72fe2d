// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// readFile merges the configuration file at configFilePath into cfg.
// Files ending in .toml are read as TOML, everything else as YAML.
func (cfg *ServerConfig) readFile(configFilePath string) error {
	if configFilePath == "" {
		return nil
	}

	_, err := os.Stat(configFilePath)
	if os.IsNotExist(err) {
		log.Info().
			Str("path", configFilePath).
			Msg("No configuration file found, skipping")

		return nil
	}

	data, err := os.ReadFile(configFilePath) // #nosec G304 -- Only loading a config file
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", configFilePath, err)
	}

	format := "YAML"
	if strings.EqualFold(filepath.Ext(configFilePath), ".toml") {
		format = "TOML"
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}

	if err != nil {
		return fmt.Errorf("failed to parse %s from %s: %w", format, configFilePath, err)
	}

	log.Info().
		Str("path", configFilePath).
		Str("format", format).
		Msg("Successfully loaded configuration")

	return nil
}
