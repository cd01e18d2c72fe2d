// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"cmp"
	"fmt"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// key identifies a gettext entry. plural is empty for singular entries.
type key struct {
	ctx    string
	id     string
	plural string
}

type ref struct {
	file string
	line int
}

// catalog collects the references of every message found.
type catalog struct {
	root    string
	entries map[key][]ref
}

func newCatalog(root string) *catalog {
	return &catalog{root: root, entries: map[key][]ref{}}
}

// add records a reference to a message, with the file relative to the root.
func (c *catalog) add(pos token.Position, k key) {
	file := pos.Filename
	if rel, err := filepath.Rel(c.root, file); err == nil {
		file = rel
	}

	c.entries[k] = append(c.entries[k], ref{file: filepath.ToSlash(file), line: pos.Line})
}

// render writes the catalog as a POT file. Entries are sorted by context,
// then msgid, then plural; references by file and line, without duplicates.
func (c *catalog) render(version string) string {
	keys := make([]key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b key) int {
		return cmp.Or(cmp.Compare(a.ctx, b.ctx), cmp.Compare(a.id, b.id), cmp.Compare(a.plural, b.plural))
	})

	var b strings.Builder

	writeHeader(&b, version)

	for i, k := range keys {
		refs := slices.Clone(c.entries[k])
		slices.SortFunc(refs, func(x, y ref) int {
			return cmp.Or(cmp.Compare(x.file, y.file), cmp.Compare(x.line, y.line))
		})

		b.WriteString("#:")

		for _, r := range slices.Compact(refs) {
			fmt.Fprintf(&b, " %s:%d", r.file, r.line)
		}

		b.WriteString("\n")

		if k.ctx != "" {
			fmt.Fprintf(&b, "msgctxt %q\n", k.ctx)
		}

		fmt.Fprintf(&b, "msgid %q\n", k.id)

		if k.plural != "" {
			fmt.Fprintf(&b, "msgid_plural %q\n", k.plural)
			b.WriteString("msgstr[0] \"\"\nmsgstr[1] \"\"\n")
		} else {
			b.WriteString("msgstr \"\"\n")
		}

		if i < len(keys)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writeHeader(b *strings.Builder, version string) {
	b.WriteString("msgid \"\"\nmsgstr \"\"\n")
	fmt.Fprintf(b, "\"Project-Id-Version: l2i18n %s\\n\"\n", version)
	b.WriteString(`"Language: en\n"` + "\n")
	b.WriteString(`"MIME-Version: 1.0\n"` + "\n")
	b.WriteString(`"Content-Type: text/plain; charset=UTF-8\n"` + "\n")
	b.WriteString(`"Content-Transfer-Encoding: 8bit\n"` + "\n")
	b.WriteString(`"Plural-Forms: nplurals=2; plural=(n != 1);\n"` + "\n")
	b.WriteString("\n")
}

// detectVersion resolves a version string using git describe, or "dev".
func detectVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	if err != nil {
		return "dev"
	}

	return strings.TrimSpace(string(out))
}

// findProjectRoot returns the git toplevel, else the nearest directory with
// a go.mod, else wd.
func findProjectRoot(wd string) string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = wd

	if out, err := cmd.Output(); err == nil {
		if root := strings.TrimSpace(string(out)); root != "" {
			return filepath.Clean(root)
		}
	}

	for dir := filepath.Clean(wd); ; dir = filepath.Dir(dir) {
		if fi, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !fi.IsDir() {
			return dir
		}

		if filepath.Dir(dir) == dir {
			return wd
		}
	}
}
