// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dhousefe/aCisDsec/core/keys"
)

var errEmptyKey = errors.New("text has no characters usable in a key")

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <text>...",
		Short: "Print the translation key derived from a text",
		Long:  `Arguments are joined with single spaces before the key is derived.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := keys.Derive(strings.Join(args, " "))
			if key == "" {
				return errEmptyKey
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), key)

			return err
		},
	}
}
