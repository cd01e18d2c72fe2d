// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dhousefe/aCisDsec/core/dictionary"
)

type mapDict map[string]string

func (d mapDict) Lookup(key string) string {
	if v, ok := d[strings.ToLower(key)]; ok && v != "" {
		return v
	}

	return dictionary.Unresolved(key)
}

// countingDict records how many times each key was looked up.
type countingDict struct {
	mapDict
	calls map[string]int
}

func (d *countingDict) Lookup(key string) string {
	d.calls[key]++

	return d.mapDict.Lookup(key)
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	dict := mapDict{
		"hello":   "Olá",
		"shop":    `["Loja"]`,
		"quoted":  `"Citado"`,
		"bracket": "[Colchete]",
	}

	out, stats := Substitute(
		`<body>%hello% %hello% %shop% %quoted% %bracket% %missing%</body>`,
		dict,
	)

	assert.Equal(t, `<body>Olá Olá Loja Citado Colchete %missing%</body>`, out)
	assert.Equal(t, 4, stats.Resolved)
	assert.Equal(t, []string{"missing"}, stats.Unresolved)
}

func TestSubstituteLooksUpOncePerKey(t *testing.T) {
	t.Parallel()

	dict := &countingDict{mapDict: mapDict{"a": "A"}, calls: map[string]int{}}

	Substitute("%a% %a% %b% %b%", dict)

	assert.Equal(t, 1, dict.calls["a"])
	// Unresolved keys get exactly one retry.
	assert.Equal(t, 2, dict.calls["b"])
}

func TestSubstituteReservedTokens(t *testing.T) {
	t.Parallel()

	dict := mapDict{"quest": "Missão", "objectid": "42", "talk": "Falar"}

	raw := `<button action="bypass -h npc_%objectId%_Quest" value="%quest%"><a action="bypass -h npc_%objectId%_Chat">%talk%</a>`
	out, _ := Substitute(raw, dict)

	assert.Contains(t, out, "%quest%")
	assert.Equal(t, 2, strings.Count(out, "%objectId%"))
	assert.Contains(t, out, ">Falar<")
}

func TestSubstituteIgnoresLoosePercentSigns(t *testing.T) {
	t.Parallel()

	raw := "<body>Get 50% off and 20% more</body>"
	out, stats := Substitute(raw, mapDict{})

	assert.Equal(t, raw, out)
	assert.Zero(t, stats.Resolved)
	assert.Empty(t, stats.Unresolved)
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		`plain`:      `plain`,
		`"quoted"`:   `quoted`,
		`[bracket]`:  `bracket`,
		`["both"]`:   `both`,
		`""double""`: `"double"`,
		`"`:          `"`,
		`[]`:         ``,
	}

	for in, want := range testCases {
		assert.Equal(t, want, Unwrap(in), in)
	}
}

func TestResolveFinishes(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 15)
	dict := mapDict{
		"intro":  `<font color="LEVEL">` + long + `</font>`,
		"button": strings.Repeat("x", 60),
	}

	out, _ := Resolve(`<body>%intro%<button action="bypass x" value="%button%"></body>`, dict)

	assert.NotContains(t, out, "<font")
	assert.Contains(t, out, "<br1>")
	assert.Contains(t, out, `value="`+strings.Repeat("x", 45)+`"`)
}

func TestResolveIdempotent(t *testing.T) {
	t.Parallel()

	dict := mapDict{
		"hello": "Olá, aventureiro! Seja bem-vindo à nossa humilde loja de armas.",
		"talk":  "Falar",
	}

	raw := `<html><body>%hello%<br><button action="bypass -h npc_%objectId%_Chat 0" value="%talk%"> %quest% %unknown%</body></html>`

	once, _ := Resolve(raw, dict)
	twice, _ := Resolve(once, dict)

	assert.Equal(t, once, twice)
	assert.Contains(t, once, "%objectId%")
	assert.Contains(t, once, "%quest%")
	assert.Contains(t, once, "%unknown%")
}
