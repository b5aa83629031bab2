package importer

import "strings"

// FolderRule assigns documents whose name contains Tag to the folder named Folder.
type FolderRule struct {
	Tag    string `mapstructure:"tag" yaml:"tag"`
	Folder string `mapstructure:"folder" yaml:"folder"`
}

// Placement decides the destination folder name for a document.
//
// When Fixed is set every document goes there and Rules are ignored.
// Otherwise every rule is checked independently in order; each match
// overwrites the previous one, so the last matching rule wins. Default,
// when set, receives documents no rule matched.
type Placement struct {
	Fixed   string       `mapstructure:"fixed" yaml:"fixed"`
	Rules   []FolderRule `mapstructure:"rules" yaml:"rules"`
	Default string       `mapstructure:"default" yaml:"default"`
}

// Resolve returns the destination folder name for a document named name.
//
// Postcondition: ok is false when no folder applies.
func (p Placement) Resolve(name string) (folder string, ok bool) {
	if p.Fixed != "" {
		return p.Fixed, true
	}
	for _, r := range p.Rules {
		if strings.Contains(name, r.Tag) {
			folder, ok = r.Folder, true
		}
	}
	if !ok && p.Default != "" {
		return p.Default, true
	}
	return folder, ok
}

// Profile holds the placement for each importable document type.
type Profile struct {
	Journals Placement `mapstructure:"journals" yaml:"journals"`
	Actors   Placement `mapstructure:"actors" yaml:"actors"`
	Items    Placement `mapstructure:"items" yaml:"items"`
	Scenes   Placement `mapstructure:"scenes" yaml:"scenes"`
}

// HarmsWayProfile returns the placement used by the Harm's Way adventure:
// chapter tags route journals and scenes, untagged journals land in the
// adventure folder and prepared characters share one folder.
func HarmsWayProfile() Profile {
	return Profile{
		Journals: Placement{
			Rules: []FolderRule{
				{Tag: "(I)", Folder: "SCENE 1"},
				{Tag: "(JUS)", Folder: "JUSTITIAN"},
				{Tag: "(H)", Folder: "HARM'S WAY"},
			},
			Default: "HARM'S WAY",
		},
		Actors: Placement{Fixed: "PREPARED CHARACTERS"},
		Scenes: Placement{Rules: []FolderRule{
			{Tag: "(I)", Folder: "INTRODUCTION"},
			{Tag: "(JUS)", Folder: "JUSTITIAN"},
			{Tag: "(SC", Folder: "SCENES"},
		}},
	}
}
