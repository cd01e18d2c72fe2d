// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package present

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
)

// TierCount is the number of button tiers read from the translation config.
const TierCount = 6

var errTierValue = errors.New("invalid button tier value")

// Tier is one entry of the button size table. A caption whose length is at
// most MaxLen fits the tier.
type Tier struct {
	MaxLen int
	Width  int
	Height int
	Back   string
	Fore   string
}

// DefaultTiers is the table used when no valid configuration is available.
var DefaultTiers = []Tier{
	{MaxLen: 8, Width: 48, Height: 13, Back: "L2UI_ch3.smallbutton1_over", Fore: "L2UI_ch3.smallbutton1"},
	{MaxLen: 11, Width: 65, Height: 13, Back: "L2UI_ch3.smallbutton2_over", Fore: "L2UI_ch3.smallbutton2"},
	{MaxLen: 14, Width: 95, Height: 13, Back: "L2UI_ch3.bigbutton_over", Fore: "L2UI_ch3.bigbutton"},
	{MaxLen: 18, Width: 133, Height: 13, Back: "L2butom.bigbutton3_over", Fore: "L2butom.bigbutton3"},
	{MaxLen: 46, Width: 238, Height: 13, Back: "L2butom.bitbuttom7_over", Fore: "L2butom.bitbuttom7"},
	{MaxLen: math.MaxInt, Width: 238, Height: 19, Back: "L2butom.bitbuttom8_over", Fore: "L2butom.bitbuttom8"},
}

// TiersFrom reads the botao_<i>_{width,height,img_back,img_fore,length} keys
// for i in 1..TierCount. Absent keys take the value of the matching default
// tier. Any malformed number fails the whole table, in which case a copy of
// DefaultTiers is returned together with the error.
func TiersFrom(p *properties.Properties) ([]Tier, error) {
	tiers := make([]Tier, 0, TierCount)

	for i := 1; i <= TierCount; i++ {
		def := DefaultTiers[i-1]
		prefix := "botao_" + strconv.Itoa(i) + "_"

		width, err := intProp(p, prefix+"width", def.Width)
		if err != nil {
			return slices.Clone(DefaultTiers), err
		}

		height, err := intProp(p, prefix+"height", def.Height)
		if err != nil {
			return slices.Clone(DefaultTiers), err
		}

		maxLen, err := intProp(p, prefix+"length", def.MaxLen)
		if err != nil {
			return slices.Clone(DefaultTiers), err
		}

		tiers = append(tiers, Tier{
			MaxLen: maxLen,
			Width:  width,
			Height: height,
			Back:   p.GetString(prefix+"img_back", def.Back),
			Fore:   p.GetString(prefix+"img_fore", def.Fore),
		})
	}

	slices.SortStableFunc(tiers, func(a, b Tier) int { return cmp.Compare(a.MaxLen, b.MaxLen) })

	return tiers, nil
}

// LoadTiers reads the tier table from a properties file. On any failure it
// returns a copy of DefaultTiers and the error.
func LoadTiers(path string) ([]Tier, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return slices.Clone(DefaultTiers), err
	}

	return TiersFrom(p)
}

// Select returns the first tier whose MaxLen is at least length. Captions
// longer than every tier get the last one.
func Select(tiers []Tier, length int) Tier {
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}

	for _, t := range tiers {
		if length <= t.MaxLen {
			return t
		}
	}

	return tiers[len(tiers)-1]
}

func intProp(p *properties.Properties, key string, def int) (int, error) {
	raw, ok := p.Get(key)
	if !ok {
		return def, nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", errTierValue, key, raw)
	}

	return v, nil
}
