// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/Dhousefe/aCisDsec/core/audit" // setup better logging format
)

// Global exposes the server configuration.
var Global ServerConfig

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `toml:"-" yaml:"-"`

	// Basic configures the listener of the admin API.
	Basic struct {
		Host                     string      `env:"L2I18N_HOST,overwrite"                  toml:"host"                  yaml:"host"`
		Port                     string      `env:"L2I18N_PORT,overwrite"                  toml:"port"                  yaml:"port"`
		UnixSocket               string      `env:"L2I18N_UNIXSOCKET"                      toml:"unixSocket"            yaml:"unixSocket"`
		RawUnixSocketPermissions string      `env:"L2I18N_UNIXSOCKET_PERMISSIONS"          toml:"unixSocketPermissions" yaml:"unixSocketPermissions"`
		UnixSocketPermissions    os.FileMode `toml:"-"                                     yaml:"-"`
		UnixSocketUser           string      `env:"L2I18N_UNIXSOCKET_USER"                 toml:"unixSocketUser"        yaml:"unixSocketUser"`
		UnixSocketGroup          string      `env:"L2I18N_UNIXSOCKET_GROUP"                toml:"unixSocketGroup"       yaml:"unixSocketGroup"`
		AdminToken               string      `env:"L2I18N_ADMIN_TOKEN"                     toml:"adminToken"            yaml:"adminToken"`
	} `toml:"basic" yaml:"basic"`

	Translation struct {
		// Enabled is the translation flag every new actor starts with.
		Enabled           bool     `env:"L2I18N_TRANSLATION_ENABLED,overwrite"   toml:"enabled"           yaml:"enabled"`
		DefaultLocale     string   `env:"L2I18N_DEFAULT_LOCALE,overwrite"        toml:"defaultLocale"     yaml:"defaultLocale"`
		SupportedLocales  []string `env:"L2I18N_SUPPORTED_LOCALES,overwrite"     toml:"supportedLocales"  yaml:"supportedLocales"`
		MaxLength         int      `env:"L2I18N_MAX_LENGTH,overwrite"            toml:"maxLength"         yaml:"maxLength"`
		DataRoot          string   `env:"L2I18N_DATA_ROOT,overwrite"             toml:"dataRoot"          yaml:"dataRoot"`
		DictionaryDir     string   `env:"L2I18N_DICTIONARY_DIR,overwrite"        toml:"dictionaryDir"     yaml:"dictionaryDir"`
		DictionaryPattern string   `env:"L2I18N_DICTIONARY_PATTERN,overwrite"    toml:"dictionaryPattern" yaml:"dictionaryPattern"`
		RulesFile         string   `env:"L2I18N_RULES_FILE,overwrite"            toml:"rulesFile"         yaml:"rulesFile"`
		Materialize       bool     `env:"L2I18N_MATERIALIZE,overwrite"           toml:"materialize"       yaml:"materialize"`
	} `toml:"translation" yaml:"translation"`

	Cache struct {
		Compress bool `env:"L2I18N_CACHE_COMPRESS,overwrite" toml:"compress" yaml:"compress"`
	} `toml:"cache" yaml:"cache"`

	Admin struct {
		Enabled bool `env:"L2I18N_ADMIN,overwrite" toml:"enabled" yaml:"enabled"`
		// ReloadsPerMinute throttles POST /dictionaries/reload.
		ReloadsPerMinute int `env:"L2I18N_ADMIN_RELOADS_PER_MINUTE,overwrite" toml:"reloadsPerMinute" yaml:"reloadsPerMinute"`
		ReloadBurst      int `env:"L2I18N_ADMIN_RELOAD_BURST,overwrite"       toml:"reloadBurst"      yaml:"reloadBurst"`
		// ShutdownSeconds bounds the graceful shutdown of the listener.
		ShutdownSeconds int `env:"L2I18N_ADMIN_SHUTDOWN_SECONDS,overwrite" toml:"shutdownSeconds" yaml:"shutdownSeconds"`
	} `toml:"admin" yaml:"admin"`

	Extract struct {
		// Concurrency bounds the files processed at once by offline extraction.
		Concurrency int `env:"L2I18N_EXTRACT_CONCURRENCY,overwrite" toml:"concurrency" yaml:"concurrency"`
	} `toml:"extract" yaml:"extract"`

	Instance struct {
		StartingTime string `toml:"-" yaml:"-"`
	} `toml:"-" yaml:"-"`

	Development struct {
		InDevelopment bool `env:"L2I18N_DEV" toml:"inDevelopment" yaml:"inDevelopment"`
	} `toml:"development" yaml:"development"`

	Log struct {
		Level   string   `env:"L2I18N_LOG_LEVEL,overwrite"   toml:"logLevel"   yaml:"logLevel"`
		Outputs []string `env:"L2I18N_LOG_OUTPUTS,overwrite" toml:"logOutputs" yaml:"logOutputs"`
		Format  string   `env:"L2I18N_LOG_FORMAT,overwrite"  toml:"logFormat"  yaml:"logFormat"`
	} `toml:"log" yaml:"log"`

	Internationalization struct {
		// Strict mode for missing keys.
		//
		// When enabled, missing keys are logged (deduplicated per locale+key) and
		// visibly wrapped using markers.
		StrictMissingKeys bool `env:"L2I18N_STRICT_MISSING_KEYS" toml:"strictMissingKeys" yaml:"strictMissingKeys"`
	} `toml:"internationalization" yaml:"internationalization"`
}

// LoadConfig loads the configuration from various sources.
func (cfg *ServerConfig) LoadConfig() error {
	parsedConfigFlagValue := parseCommandLineArgs()

	// Check if the -config flag was explicitly set by the user.
	configFlagUserSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagUserSet = true
		}
	})

	var configFilePath string

	// Determine the config file path with the correct precedence:
	// 1. Command-line flag (-config)
	// 2. Environment variable (L2I18N_CONFIGFILE)
	// 3. Default path with fallback check
	if configFlagUserSet {
		configFilePath = parsedConfigFlagValue
	} else if envVar := os.Getenv("L2I18N_CONFIGFILE"); envVar != "" {
		configFilePath = envVar
	} else {
		configFilePath = fallbackConfigPath(parsedConfigFlagValue)
	}

	return cfg.Load(configFilePath)
}

// Load runs the layered load with an explicit configuration file path.
// An empty path or a file that does not exist skips the file layer.
func (cfg *ServerConfig) Load(configFilePath string) error {
	cfg.SetDefaults()

	cfg.Build.load()

	cfg.Instance.StartingTime = time.Now().UTC().Format("2006-01-02 15:04")

	if err := cfg.readFile(configFilePath); err != nil {
		return fmt.Errorf("error loading config file: %w", err)
	}

	useDotEnv()

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg.setupAudit()

	cfg.print()

	// Heuristically check for containerized environment and warn if host is not a wildcard address.
	if cfg.Admin.Enabled && cfg.Basic.UnixSocket == "" && isContainerized() &&
		cfg.Basic.Host != "0.0.0.0" && cfg.Basic.Host != "::" {
		log.Warn().
			Str("host", cfg.Basic.Host).
			Msg("Running in a containerized environment but host is not a wildcard address (e.g., '0.0.0.0' or '::'). The admin API may not be reachable from outside the container.")
	}

	return nil
}

// fallbackConfigPath returns defaultPath if it exists, otherwise the first
// existing alternative among config.yml and config.toml, otherwise defaultPath.
func fallbackConfigPath(defaultPath string) string {
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}

	for _, alt := range []string{"./config.yml", "./config.toml"} {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return defaultPath
}

// isContainerized checks for common indicators of a containerized environment.
//
// This is a heuristic and may not be 100% accurate.
func isContainerized() bool {
	// Check for a Kubernetes-injected environment variable.
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}

	// Check for existence of container-specific files.
	for _, marker := range []string{"/.dockerenv", "/.containerenv"} {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}

	// #nosec G304 -- We are checking for the existence and content of a well-known system file for heuristics.
	cgroup, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}

	content := string(cgroup)

	for _, keyword := range []string{"docker", "kubepods", "containerd", "lxc", "crio", ".machine"} {
		if strings.Contains(content, keyword) {
			return true
		}
	}

	return false
}
