// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dhousefe/aCisDsec/core/pipeline"
)

var errUnknownProfile = errors.New("unknown profile")

func newRenderCmd(opts *options) *cobra.Command {
	var (
		profileName string
		entityID    int
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Resolve a resource file for a locale and print the result",
		Long: `render runs the file through the same pipeline as the daemon.

New fragments are appended to the locale's dictionary; no localized file is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, ok := pipeline.ProfileByName(profileName)
			if !ok {
				return fmt.Errorf("%w: %q", errUnknownProfile, profileName)
			}

			if _, err := os.Stat(args[0]); err != nil {
				return err
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}

			p, _, err := newPipeline(cfg, "")
			if err != nil {
				return err
			}

			out := p.ResolveFile(profile, args[0], entityID, cfg.Translation.DefaultLocale, true)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)

			return err
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", pipeline.NpcDialog.Name, "window profile: npc or tutorial")
	cmd.Flags().IntVar(&entityID, "entity", 0, "entity id the dialog belongs to")

	return cmd
}
