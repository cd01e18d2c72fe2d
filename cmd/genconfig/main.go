// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes example configuration files from the defaults.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"github.com/Dhousefe/aCisDsec/config"
	"github.com/Dhousefe/aCisDsec/core/audit"
)

const (
	envOutputFile  = "deploy/.env.example"
	yamlOutputFile = "deploy/config.yaml.example"
	tomlOutputFile = "deploy/config.toml.example"
	filePerm       = 0o644
	dirPerm        = 0o755

	envFileHeader = `# l2i18n configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# l2i18n configuration (via configuration file)
#
# Copy this file to config.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
	tomlFileHeader = `# l2i18n configuration (via configuration file)
#
# Copy this file to config.toml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
)

// Fields written uncommented in the .env example.
var essentialEnvVars = map[string]bool{
	"L2I18N_HOST":           true,
	"L2I18N_PORT":           true,
	"L2I18N_DEFAULT_LOCALE": true,
	"L2I18N_DICTIONARY_DIR": true,
}

func main() {
	audit.SetDefaultLogger()

	cfg := &config.ServerConfig{}
	cfg.SetDefaults()

	yamlContent, err := renderYAML(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to YAML")
	}

	tomlContent, err := renderTOML(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to TOML")
	}

	write(envOutputFile, renderEnv(cfg))
	write(yamlOutputFile, yamlContent)
	write(tomlOutputFile, tomlContent)
}

func write(path, content string) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to create output directory")
	}

	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write example file")
	}

	log.Info().Str("path", path).Msg("Successfully generated example file")
}

// renderEnv lists every environment variable with its default.
func renderEnv(cfg *config.ServerConfig) string {
	var sb strings.Builder
	sb.WriteString(envFileHeader)

	val := reflect.ValueOf(*cfg)
	typ := val.Type()

	// Iterate over the top-level struct fields.
	for i := range typ.NumField() {
		structField := typ.Field(i)
		structValue := val.Field(i)

		if structValue.Kind() != reflect.Struct || structField.Name == "Build" {
			continue
		}

		var section strings.Builder

		innerTyp := structValue.Type()
		for j := range innerTyp.NumField() {
			field := innerTyp.Field(j)
			value := structValue.Field(j)

			tag, ok := field.Tag.Lookup("env")
			if !ok {
				continue
			}

			envVarName := strings.Split(tag, ",")[0]

			switch {
			case essentialEnvVars[envVarName]:
				fmt.Fprintf(&section, "%s=\"%v\"\n", envVarName, value.Interface())
			case value.Kind() == reflect.Slice:
				fmt.Fprintf(&section, "# %s=%s\n", envVarName, joinSlice(value))
			case value.Kind() == reflect.String && value.Len() == 0:
				// Omit the value to prompt user input.
				fmt.Fprintf(&section, "# %s=\n", envVarName)
			default:
				fmt.Fprintf(&section, "# %s=%v\n", envVarName, value.Interface())
			}
		}

		if section.Len() == 0 {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n%s\n", structField.Name, section.String())
	}

	return sb.String()
}

// joinSlice renders a slice the way readEnv splits it back.
func joinSlice(v reflect.Value) string {
	parts := make([]string, v.Len())
	for i := range v.Len() {
		parts[i] = fmt.Sprint(v.Index(i).Interface())
	}

	return strings.Join(parts, ",")
}

// renderYAML marshals cfg and comments out every value, keeping section headers.
func renderYAML(cfg *config.ServerConfig) (string, error) {
	var yamlContent strings.Builder

	if err := yaml.NewEncoder(&yamlContent, yaml.Indent(2)).Encode(cfg); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(yamlFileHeader)

	for line := range strings.SplitSeq(yamlContent.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Top-level keys (e.g., "basic:") are treated as section headers.
		if !strings.HasPrefix(line, " ") {
			fmt.Fprintf(&sb, "\n%s\n", line)

			continue
		}

		indentSize := len(line) - len(strings.TrimLeft(line, " "))
		fmt.Fprintf(&sb, "%s# %s\n", strings.Repeat(" ", indentSize), trimmed)
	}

	return sb.String(), nil
}

// renderTOML marshals cfg and comments out every key, keeping table headers.
func renderTOML(cfg *config.ServerConfig) (string, error) {
	var buf bytes.Buffer

	if err := toml.NewEncoder(&buf).SetIndentTables(true).Encode(cfg); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(tomlFileHeader)

	for line := range strings.SplitSeq(buf.String(), "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			sb.WriteString("\n")
		case strings.HasPrefix(trimmed, "["):
			sb.WriteString(line + "\n")
		default:
			indentSize := len(line) - len(strings.TrimLeft(line, " "))
			fmt.Fprintf(&sb, "%s# %s\n", strings.Repeat(" ", indentSize), trimmed)
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}
