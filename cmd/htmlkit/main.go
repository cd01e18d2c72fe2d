// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command htmlkit is the offline tooling for dialog localization: it derives
// keys, previews resolved dialogs, mines resource trees into dictionaries and
// reports translation progress.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Dhousefe/aCisDsec/config"
	"github.com/Dhousefe/aCisDsec/core/audit"
	"github.com/Dhousefe/aCisDsec/core/dictionary"
	"github.com/Dhousefe/aCisDsec/core/pipeline"
	"github.com/Dhousefe/aCisDsec/i18n"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	dictDir    string
	pattern    string
	rulesFile  string
	locale     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "htmlkit",
		Short: "Offline tooling for dialog localization",
		Long: `htmlkit works on dialog resources and locale dictionaries without the daemon.

Commands:
  key       Print the translation key derived from a text
  render    Resolve a resource file for a locale and print the result
  extract   Mine every resource under a directory into a dictionary
  stats     Show entry and untranslated counts per dictionary`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := zerolog.WarnLevel
			if opts.verbose {
				level = zerolog.DebugLevel
			}

			zerolog.SetGlobalLevel(level)

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "configuration file (defaults apply when empty)")
	flags.StringVar(&opts.dictDir, "dict-dir", "", "dictionary directory (overrides the configuration)")
	flags.StringVar(&opts.pattern, "pattern", "", "dictionary file name pattern (overrides the configuration)")
	flags.StringVar(&opts.rulesFile, "rules", "", "translation-config properties file (overrides the configuration)")
	flags.StringVarP(&opts.locale, "locale", "l", "", "locale such as pt_BR (defaults to the configured default locale)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline activity")

	root.AddCommand(
		newKeyCmd(),
		newRenderCmd(opts),
		newExtractCmd(opts),
		newStatsCmd(opts),
	)

	return root
}

func main() {
	audit.SetDefaultLogger()

	if err := i18n.Setup(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize i18n engine")
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "htmlkit:", err)
		os.Exit(1)
	}
}

// load returns the configuration with the flag overrides applied.
func (o *options) load() (config.ServerConfig, error) {
	var cfg config.ServerConfig

	if o.configPath != "" {
		if err := cfg.Load(o.configPath); err != nil {
			return cfg, err
		}
	} else {
		cfg.SetDefaults()
	}

	t := &cfg.Translation

	if o.dictDir != "" {
		t.DictionaryDir = o.dictDir
	}

	if o.pattern != "" {
		t.DictionaryPattern = o.pattern
	}

	if o.rulesFile != "" {
		t.RulesFile = o.rulesFile
	}

	if o.locale != "" {
		t.DefaultLocale = o.locale
	}

	return cfg, nil
}

// newPipeline builds a pipeline that never writes localized files.
func newPipeline(cfg config.ServerConfig, root string) (*pipeline.Pipeline, *dictionary.Registry, error) {
	t := cfg.Translation

	rules, err := pipeline.LoadRules(t.RulesFile)
	if err != nil {
		log.Debug().Err(err).Str("path", t.RulesFile).Msg("Using default button tiers")
	}

	dicts := dictionary.NewRegistry(t.DictionaryDir, t.DictionaryPattern)

	p, err := pipeline.New(pipeline.Options{
		Dictionaries:       dicts,
		Rules:              rules,
		MaxLength:          t.MaxLength,
		Root:               root,
		DisableMaterialize: true,
	})
	if err != nil {
		return nil, nil, err
	}

	return p, dicts, nil
}
