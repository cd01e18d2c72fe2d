// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"maps"

	"github.com/Dhousefe/aCisDsec/core/markup"
)

const separator = `<img src="L2UI.SquareWhite" width="300" height="1">`

// Profile describes one kind of dialog window: the skeleton the processed
// content is placed in and the elements whose text is never extracted.
type Profile struct {
	// Name identifies the profile in cache fingerprints and logs.
	Name      string
	Prefix    string
	Suffix    string
	Protected markup.Set
}

var (
	// NpcDialog is the window opened when talking to an NPC.
	NpcDialog = Profile{
		Name:      "npc",
		Prefix:    "<html>\n<body>\n<center>\n<title>%title%</title>\n",
		Suffix:    "\n" + separator + "\n</center>\n</body>\n</html>",
		Protected: markup.DefaultProtected,
	}

	// Tutorial is the tutorial side window.
	Tutorial = Profile{
		Name:      "tutorial",
		Prefix:    "<html><body><center>",
		Suffix:    "<br>" + separator + "</center></body></html>",
		Protected: withImages(markup.DefaultProtected),
	}
)

// ProfileByName returns the profile called name.
func ProfileByName(name string) (Profile, bool) {
	switch name {
	case NpcDialog.Name:
		return NpcDialog, true
	case Tutorial.Name:
		return Tutorial, true
	default:
		return Profile{}, false
	}
}

func withImages(s markup.Set) markup.Set {
	out := maps.Clone(s)
	out["img"] = true

	return out
}

// wrap places content inside the profile skeleton.
func (p Profile) wrap(content string) string {
	return p.Prefix + content + p.Suffix
}
