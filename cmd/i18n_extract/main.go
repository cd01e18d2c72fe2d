// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command i18n_extract scans the module for translatable messages and writes
// the gettext template the catalogs under i18n/po are built from.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/tools/go/packages"

	"github.com/Dhousefe/aCisDsec/core/audit"
)

func main() {
	audit.SetDefaultLogger()

	outPath := flag.String("o", "i18n/po/l2i18n.pot", "output file")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get working directory")
	}

	pkgs, err := packages.Load(&packages.Config{Mode: packages.LoadAllSyntax, Tests: false}, "./...")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load packages")
	}

	if packages.PrintErrors(pkgs) > 0 {
		log.Fatal().Msg("Failed to load packages due to errors")
	}

	root := findProjectRoot(wd)
	refs := newCatalog(root)

	i18nPkgs := findI18nPkgPaths(pkgs)
	for _, p := range pkgs {
		refs.scan(p, i18nPkgs)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	if err := os.WriteFile(*outPath, []byte(refs.render(detectVersion())), 0o644); err != nil {
		log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to write template")
	}

	log.Info().Str("path", *outPath).Int("messages", len(refs.entries)).Msg("Wrote message template")
}
