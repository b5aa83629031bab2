// Package world provides the host-side world model: folders, documents,
// embedded scene notes and tokens, and the storage ports the importer writes
// through.
package world

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store lookups that match nothing.
var ErrNotFound = errors.New("not found")

// DocumentType names a kind of world document. Folders are typed by the
// document type they contain.
type DocumentType string

// Document types known to the importer.
const (
	Scene        DocumentType = "Scene"
	Item         DocumentType = "Item"
	Actor        DocumentType = "Actor"
	JournalEntry DocumentType = "JournalEntry"
)

// DocumentTypes lists every document type in pipeline order.
var DocumentTypes = []DocumentType{JournalEntry, Actor, Item, Scene}

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case Scene, Item, Actor, JournalEntry:
		return true
	}
	return false
}

// ParseDocumentType converts s into a DocumentType.
//
// Postcondition: Returns a valid DocumentType or a non-nil error.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// Folder sorting modes.
const (
	SortAlphabetical = "a"
	SortManual       = "m"
)

// Folder is a named, typed container for documents of one kind.
type Folder struct {
	ID      string       `json:"_id,omitempty" yaml:"id,omitempty"`
	Name    string       `json:"name" yaml:"name"`
	Type    DocumentType `json:"type" yaml:"type"`
	Parent  string       `json:"parent,omitempty" yaml:"parent,omitempty"`
	Sort    int          `json:"sort,omitempty" yaml:"sort,omitempty"`
	Sorting string       `json:"sorting,omitempty" yaml:"sorting,omitempty"`
	Color   string       `json:"color,omitempty" yaml:"color,omitempty"`
	Flags   Flags        `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// Note is a map pin embedded in a scene that opens a journal entry.
type Note struct {
	ID      string  `json:"_id,omitempty"`
	EntryID string  `json:"entryId,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Text    string  `json:"text,omitempty"`
	Flags   Flags   `json:"flags,omitempty"`
}

// Token is an actor placement embedded in a scene.
type Token struct {
	ID      string  `json:"_id,omitempty"`
	ActorID string  `json:"actorId,omitempty"`
	Name    string  `json:"name,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Flags   Flags   `json:"flags,omitempty"`
}

// Document is a journal entry, actor, item, or scene. Data holds the opaque
// remainder of the source payload; the importer never interprets it.
type Document struct {
	ID     string
	Type   DocumentType
	Name   string
	Folder string
	Sort   int
	Flags  Flags
	Data   map[string]any

	// Scene-only fields.
	Journal string
	Thumb   string
	Notes   []Note
	Tokens  []Token
}

// Clone returns a deep-enough copy of d: slices and flag maps are copied so
// the importer can rewrite references without touching the source. Data is
// shared.
func (d *Document) Clone() *Document {
	out := *d
	out.Flags = d.Flags.Clone()
	if d.Notes != nil {
		out.Notes = make([]Note, len(d.Notes))
		for i, n := range d.Notes {
			n.Flags = n.Flags.Clone()
			out.Notes[i] = n
		}
	}
	if d.Tokens != nil {
		out.Tokens = make([]Token, len(d.Tokens))
		for i, tk := range d.Tokens {
			tk.Flags = tk.Flags.Clone()
			out.Tokens[i] = tk
		}
	}
	return &out
}

// Clone returns a copy of f with its own flag map.
func (f *Folder) Clone() *Folder {
	out := *f
	out.Flags = f.Flags.Clone()
	return &out
}
