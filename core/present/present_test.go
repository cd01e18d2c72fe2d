// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package present

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/magiconair/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhousefe/aCisDsec/core/markup"
)

var twoTiers = []Tier{
	{MaxLen: 8, Width: 48, Height: 13, Back: "b1", Fore: "f1"},
	{MaxLen: 11, Width: 65, Height: 13, Back: "b2", Fore: "f2"},
}

func convert(t *testing.T, c Converter, raw string) (string, int) {
	t.Helper()

	root := markup.Parse(raw)
	n := c.Convert(root)

	return markup.Render(root), n
}

func TestConvertTiers(t *testing.T) {
	t.Parallel()

	c := Converter{Tiers: twoTiers}

	out, n := convert(t, c, `<a action="bypass -h a">12345678</a><a action="bypass -h b">123456789</a>`)

	assert.Equal(t, 2, n)
	assert.Equal(t,
		`<button width="48" height="13" back="b1" fore="f1" action="bypass -h a" value="12345678">`+
			`<button width="65" height="13" back="b2" fore="f2" action="bypass -h b" value="123456789">`,
		out)
}

func TestConvertCaption(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		value string
	}{
		{"Font wrapper", `<a action="x"><font color="LEVEL">Shop</font></a>`, "Shop"},
		{"Quoted", `<a action="x">"Shop"</a>`, "Shop"},
		{"Doubled quotes", `<a action="x">""Shop""</a>`, "Shop"},
		{"Inner quotes kept", `<a action="x">Say "hi"</a>`, `Say &quot;hi&quot;`},
		{"Whitespace collapsed", "<a action=\"x\">\n  Buy\n  now  </a>", "Buy now"},
		{"Placeholder", `<a action="x">%buy_now%</a>`, "%buy_now%"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, _ := convert(t, Converter{}, tc.input)
			assert.Contains(t, out, `value="`+tc.value+`"`)
		})
	}
}

func TestConvertMeasure(t *testing.T) {
	t.Parallel()

	c := Converter{
		Tiers:   twoTiers,
		Measure: func(string) int { return 10 },
	}

	out, _ := convert(t, c, `<a action="x">%k%</a>`)
	assert.Contains(t, out, `width="65"`)
}

func TestConvertSkipsWhenControlsPresent(t *testing.T) {
	t.Parallel()

	raw := `<body><a action="x">Link</a><edit var="v" width="100"></body>`

	out, n := convert(t, Converter{}, raw)
	assert.Zero(t, n)
	assert.Equal(t, raw, out)
}

func TestConvertMissingAction(t *testing.T) {
	t.Parallel()

	out, _ := convert(t, Converter{}, `<a>Back</a>`)
	assert.Contains(t, out, `action="" value="Back"`)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 48, Select(twoTiers, 0).Width)
	assert.Equal(t, 48, Select(twoTiers, 8).Width)
	assert.Equal(t, 65, Select(twoTiers, 9).Width)
	assert.Equal(t, 65, Select(twoTiers, 100).Width)

	assert.Equal(t, 238, Select(nil, 46).Width)
	assert.Equal(t, 13, Select(nil, 46).Height)
	assert.Equal(t, 19, Select(nil, 47).Height)
}

func TestTiersFrom(t *testing.T) {
	t.Parallel()

	p := properties.MustLoadString(strings.Join([]string{
		"botao_1_width=50",
		"botao_1_height=15",
		"botao_1_img_back=A_over",
		"botao_1_img_fore=A",
		"botao_1_length=10",
		"botao_2_length=5",
	}, "\n"))

	tiers, err := TiersFrom(p)
	require.NoError(t, err)
	require.Len(t, tiers, TierCount)

	// Sorted by threshold.
	assert.Equal(t, 5, tiers[0].MaxLen)
	assert.Equal(t, 65, tiers[0].Width)
	assert.Equal(t, Tier{MaxLen: 10, Width: 50, Height: 15, Back: "A_over", Fore: "A"}, tiers[1])
	assert.Equal(t, math.MaxInt, tiers[5].MaxLen)
}

func TestTiersFromMalformedFallsBack(t *testing.T) {
	t.Parallel()

	p := properties.MustLoadString("botao_3_width=wide\n")

	tiers, err := TiersFrom(p)
	require.Error(t, err)
	assert.Equal(t, DefaultTiers, tiers)
}

func TestLoadTiers(t *testing.T) {
	t.Parallel()

	tiers, err := LoadTiers(filepath.Join(t.TempDir(), "missing.properties"))
	require.Error(t, err)
	assert.Equal(t, DefaultTiers, tiers)

	path := filepath.Join(t.TempDir(), "config.properties")
	require.NoError(t, os.WriteFile(path, []byte("botao_6_height = 21\n"), 0o644))

	tiers, err = LoadTiers(path)
	require.NoError(t, err)
	assert.Equal(t, 21, tiers[5].Height)
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	noSpaces := strings.Repeat("a", 120)
	assert.Equal(t,
		[]string{strings.Repeat("a", 49), strings.Repeat("a", 49), strings.Repeat("a", 22)},
		SplitLines(noSpaces))

	// The break is the last space in reach. Spaces before it stay on the
	// line, the ones after it are dropped.
	spaced := strings.Repeat("a", 45) + "   " + strings.Repeat("b", 30)
	assert.Equal(t,
		[]string{strings.Repeat("a", 45) + "  ", strings.Repeat("b", 30)},
		SplitLines(spaced))

	assert.Equal(t, []string{"short"}, SplitLines("short"))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 45) + " " + strings.Repeat("b", 30)
	root := markup.Parse(`<body>` + long + `<br>Short</body>`)

	Wrap(root)

	want := `<body>` + strings.Repeat("a", 45) + `<br1> ` + strings.Repeat("b", 30) + `<br>Short</body>`
	assert.Equal(t, want, markup.Render(root))

	// Wrapping already wrapped markup changes nothing.
	Wrap(root)
	assert.Equal(t, want, markup.Render(root))
}

func TestWrapReflowsExistingBreaks(t *testing.T) {
	t.Parallel()

	root := markup.Parse(`<body>one<br1>two</body>`)
	Wrap(root)
	assert.Equal(t, `<body>onetwo</body>`, markup.Render(root))
}

func TestCapCaptions(t *testing.T) {
	t.Parallel()

	root := markup.Parse(`<button value="` + strings.Repeat("x", 50) + `"><button value="ok">`)
	CapCaptions(root, CaptionLimit)

	assert.Equal(t,
		`<button value="`+strings.Repeat("x", 45)+`"><button value="ok">`,
		markup.Render(root))
}
