// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Dhousefe/aCisDsec/core/pipeline"
)

var resourceExts = map[string]bool{".htm": true, ".html": true}

func newExtractCmd(opts *options) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "extract <dir>",
		Short: "Mine every resource under a directory into a dictionary",
		Long: `extract resolves each .htm and .html file under dir for the locale, which
appends every fragment the dictionary lacks. The base file is always mined,
even when a localized sibling such as hello_pt_br.htm exists; the siblings
themselves and files on the ignore list are skipped.

The report counts the entries added and the files whose text still awaits
a translation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			if jobs <= 0 {
				jobs = cfg.Extract.Concurrency
			}

			dir := args[0]
			locale := cfg.Translation.DefaultLocale

			p, dicts, err := newPipeline(cfg, dir)
			if err != nil {
				return err
			}

			store := dicts.Store(locale)
			before := store.Len()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(jobs, 1))

			var files atomic.Int64

			walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}

				if d.IsDir() || !isResource(path, cfg.Translation.SupportedLocales) {
					return nil
				}

				if err := ctx.Err(); err != nil {
					return err
				}

				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}

				rel = filepath.ToSlash(rel)
				if p.Ignored(rel) {
					return nil
				}

				g.Go(func() error {
					// #nosec G304 -- path comes from walking dir
					raw, err := os.ReadFile(path)
					if err != nil {
						return err
					}

					p.ResolveAs(pipeline.NpcDialog, string(raw), 0, locale, true, rel)
					files.Add(1)

					return nil
				})

				return nil
			})

			if err := g.Wait(); err != nil {
				return err
			}

			if walkErr != nil {
				return walkErr
			}

			// Appends reach the file only; read them back.
			store.Reload()

			stats := p.Stats()
			added := store.Len() - before

			log.Info().
				Str("dir", dir).
				Str("locale", locale).
				Int64("files", files.Load()).
				Int("added", added).
				Msg("Extraction finished")

			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"files: %d\nadded: %d\npending: %d\nrejected: %d\nentries: %d\n",
				files.Load(), added, stats.Persisted, stats.Rejected, store.Len())

			return err
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files processed at once (defaults to extract.concurrency)")

	return cmd
}

// isResource reports whether path is a dialog file and not a localized
// sibling of one.
func isResource(path string, locales []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !resourceExts[ext] {
		return false
	}

	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	for _, locale := range locales {
		if strings.HasSuffix(stem, "_"+strings.ToLower(locale)) {
			return false
		}
	}

	return true
}
