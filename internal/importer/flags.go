package importer

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// Flag keys, scoped under the module key, that carry name-based references.
const (
	FlagParent  = "initialization-parent"
	FlagFolder  = "initialization-folder"
	FlagSort    = "initialization-sort"
	FlagJournal = "initialization-journal"
	FlagEntry   = "initialization-entry"
	FlagActor   = "initialization-actor"
)

// SettingInitialized is the world setting that gates the import prompt.
const SettingInitialized = "initialized"

// digestView is the canonical shape hashed for a source document; map keys
// are emitted sorted by encoding/json.
type digestView struct {
	Type    world.DocumentType `json:"type"`
	Name    string             `json:"name"`
	Sort    int                `json:"sort"`
	Flags   world.Flags        `json:"flags,omitempty"`
	Data    map[string]any     `json:"data,omitempty"`
	Journal string             `json:"journal,omitempty"`
	Notes   []world.Note       `json:"notes,omitempty"`
	Tokens  []world.Token      `json:"tokens,omitempty"`
}

// Digest returns the hex BLAKE2b-256 of doc's canonical JSON. Equal source
// documents yield equal digests.
func Digest(doc *world.Document) string {
	data, err := json.Marshal(digestView{
		Type:    doc.Type,
		Name:    doc.Name,
		Sort:    doc.Sort,
		Flags:   doc.Flags,
		Data:    doc.Data,
		Journal: doc.Journal,
		Notes:   doc.Notes,
		Tokens:  doc.Tokens,
	})
	if err != nil {
		// Payloads come from decoded JSON or YAML and always re-encode.
		data = []byte(doc.Name)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// destination picks the folder name for doc: an explicit folder flag wins,
// then the placement rules.
func destination(doc *world.Document, module string, p Placement) (string, bool) {
	if name, ok := doc.Flags.String(module, FlagFolder); ok {
		return name, true
	}
	return p.Resolve(doc.Name)
}

// applySortFlag copies an exported sort flag back onto doc.
func applySortFlag(doc *world.Document, module string) {
	if sort, ok := doc.Flags.Int(module, FlagSort); ok {
		doc.Sort = sort
	}
}
