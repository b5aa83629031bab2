package importer

import (
	"fmt"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// Registry maps human-readable names to the ids the host assigned during this
// run. Folders and documents are indexed separately since a folder and a
// document of the same type may share a name.
//
// A Registry is single-writer and not safe for concurrent mutation.
type Registry struct {
	folders map[world.DocumentType]map[string]string
	docs    map[world.DocumentType]map[string]string
	sealed  map[world.DocumentType]bool
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		folders: make(map[world.DocumentType]map[string]string),
		docs:    make(map[world.DocumentType]map[string]string),
		sealed:  make(map[world.DocumentType]bool),
	}
}

// RecordFolder maps (t, name) to a folder id. The last write for a name wins.
func (r *Registry) RecordFolder(t world.DocumentType, name, id string) {
	if r.folders[t] == nil {
		r.folders[t] = make(map[string]string)
	}
	r.folders[t][name] = id
}

// Folder returns the folder id recorded for (t, name).
func (r *Registry) Folder(t world.DocumentType, name string) (string, bool) {
	id, ok := r.folders[t][name]
	return id, ok
}

// Record maps (t, name) to a document id. The last write for a name wins.
//
// Postcondition: Returns ErrRegistrySealed if t was sealed.
func (r *Registry) Record(t world.DocumentType, name, id string) error {
	if r.sealed[t] {
		return fmt.Errorf("recording %s %q: %w", t, name, ErrRegistrySealed)
	}
	if r.docs[t] == nil {
		r.docs[t] = make(map[string]string)
	}
	r.docs[t][name] = id
	return nil
}

// Lookup returns the document id recorded for (t, name).
func (r *Registry) Lookup(t world.DocumentType, name string) (string, bool) {
	id, ok := r.docs[t][name]
	return id, ok
}

// Seal freezes document names of type t once their creating stage is done.
func (r *Registry) Seal(t world.DocumentType) {
	r.sealed[t] = true
}

// Sealed reports whether t has been sealed.
func (r *Registry) Sealed(t world.DocumentType) bool {
	return r.sealed[t]
}

// Len returns the number of document names recorded for t.
func (r *Registry) Len(t world.DocumentType) int {
	return len(r.docs[t])
}
