// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dhousefe/aCisDsec/core/dictionary"
	"github.com/Dhousefe/aCisDsec/core/keys"
)

func newStatsCmd(opts *options) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show entry and untranslated counts per dictionary",
		Long: `stats reads the dictionary of every supported locale, or only of --locale
when given. An entry is untranslated when its value is empty or is still the
source text, that is, when the value derives back to the entry's own key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			locales := cfg.Translation.SupportedLocales
			if opts.locale != "" {
				locales = []string{opts.locale}
			}

			dicts := dictionary.NewRegistry(cfg.Translation.DictionaryDir, cfg.Translation.DictionaryPattern)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LOCALE\tENTRIES\tUNTRANSLATED\tDONE")

			var listed []string

			for _, locale := range locales {
				store, err := dicts.Activate(locale)
				if errors.Is(err, dictionary.ErrDictionaryNotFound) {
					fmt.Fprintf(w, "%s\t-\t-\t-\n", locale)

					continue
				} else if err != nil {
					return err
				}

				pending := untranslated(store.Snapshot())
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", locale, store.Len(), len(pending), percent(store.Len()-len(pending), store.Len()))

				for _, key := range pending {
					listed = append(listed, locale+"\t"+key)
				}
			}

			if err := w.Flush(); err != nil {
				return err
			}

			if list {
				for _, line := range listed {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "untranslated", false, "also list the untranslated keys")

	return cmd
}

// untranslated returns the sorted keys of entries awaiting a translation.
func untranslated(entries map[string]string) []string {
	var out []string

	for key, value := range entries {
		if value == "" || keys.Derive(value) == key {
			out = append(out, key)
		}
	}

	slices.Sort(out)

	return out
}

func percent(done, total int) string {
	if total == 0 {
		return "100%"
	}

	return fmt.Sprintf("%d%%", done*100/total)
}
