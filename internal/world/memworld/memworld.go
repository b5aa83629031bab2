// Package memworld provides an in-memory world.Store and world.Settings used
// by tests and dry runs.
package memworld

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/worldseed/internal/world"
)

var (
	_ world.Store    = (*World)(nil)
	_ world.Settings = (*World)(nil)
	_ world.RunLog   = (*World)(nil)
)

// Operations that can be made to fail with FailOn.
const (
	OpCreateFolders   = "CreateFolders"
	OpUpdateFolder    = "UpdateFolder"
	OpFindFolder      = "FindFolderByName"
	OpCreateDocuments = "CreateDocuments"
	OpUpdateDocument  = "UpdateDocument"
	OpCreateThumbnail = "CreateThumbnail"
	OpSetSetting      = "SetSetting"
)

// World is a thread-safe in-memory host. Records are stored as copies so
// callers cannot mutate stored state without an Update call.
type World struct {
	mu       sync.RWMutex
	folders  []*world.Folder
	docs     map[world.DocumentType][]*world.Document
	settings map[string]bool
	runs     []world.Run
	failures map[string]error
}

// New constructs an empty World.
//
// Postcondition: Returns a World with no folders, documents, or settings.
func New() *World {
	return &World{
		docs:     make(map[world.DocumentType][]*world.Document),
		settings: make(map[string]bool),
		failures: make(map[string]error),
	}
}

// FailOn makes every subsequent call to op return err. A nil err clears it.
func (w *World) FailOn(op string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err == nil {
		delete(w.failures, op)
		return
	}
	w.failures[op] = err
}

func (w *World) failure(op string) error {
	if err, ok := w.failures[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateFolders implements world.Store.
func (w *World) CreateFolders(_ context.Context, folders []*world.Folder) ([]*world.Folder, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.failure(OpCreateFolders); err != nil {
		return nil, err
	}
	for _, f := range folders {
		if !f.Type.Valid() {
			return nil, fmt.Errorf("folder %q: invalid type %q", f.Name, f.Type)
		}
	}
	out := make([]*world.Folder, 0, len(folders))
	for _, f := range folders {
		stored := f.Clone()
		stored.ID = uuid.NewString()
		w.folders = append(w.folders, stored)
		out = append(out, stored.Clone())
	}
	return out, nil
}

// UpdateFolder implements world.Store.
func (w *World) UpdateFolder(_ context.Context, folder *world.Folder) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.failure(OpUpdateFolder); err != nil {
		return err
	}
	for i, f := range w.folders {
		if f.ID == folder.ID {
			w.folders[i] = folder.Clone()
			return nil
		}
	}
	return fmt.Errorf("folder %q: %w", folder.ID, world.ErrNotFound)
}

// FindFolderByName implements world.Store.
func (w *World) FindFolderByName(_ context.Context, t world.DocumentType, name string) (*world.Folder, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if err := w.failure(OpFindFolder); err != nil {
		return nil, err
	}
	for _, f := range w.folders {
		if f.Type == t && f.Name == name {
			return f.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%s folder %q: %w", t, name, world.ErrNotFound)
}

// ListFolders implements world.Store.
func (w *World) ListFolders(_ context.Context) ([]*world.Folder, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*world.Folder, 0, len(w.folders))
	for _, f := range w.folders {
		out = append(out, f.Clone())
	}
	return out, nil
}

// CreateDocuments implements world.Store.
func (w *World) CreateDocuments(_ context.Context, t world.DocumentType, docs []*world.Document) ([]*world.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.failure(OpCreateDocuments); err != nil {
		return nil, err
	}
	out := make([]*world.Document, 0, len(docs))
	for _, d := range docs {
		stored := d.Clone()
		stored.ID = uuid.NewString()
		stored.Type = t
		for i := range stored.Notes {
			if stored.Notes[i].ID == "" {
				stored.Notes[i].ID = uuid.NewString()
			}
		}
		for i := range stored.Tokens {
			if stored.Tokens[i].ID == "" {
				stored.Tokens[i].ID = uuid.NewString()
			}
		}
		w.docs[t] = append(w.docs[t], stored)
		out = append(out, stored.Clone())
	}
	return out, nil
}

// UpdateDocument implements world.Store.
func (w *World) UpdateDocument(_ context.Context, doc *world.Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.failure(OpUpdateDocument); err != nil {
		return err
	}
	docs := w.docs[doc.Type]
	for i, d := range docs {
		if d.ID == doc.ID {
			docs[i] = doc.Clone()
			return nil
		}
	}
	return fmt.Errorf("%s %q: %w", doc.Type, doc.ID, world.ErrNotFound)
}

// FindDocumentByName implements world.Store.
func (w *World) FindDocumentByName(_ context.Context, t world.DocumentType, name string) (*world.Document, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, d := range w.docs[t] {
		if d.Name == name {
			return d.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%s %q: %w", t, name, world.ErrNotFound)
}

// ListDocuments implements world.Store.
func (w *World) ListDocuments(_ context.Context, t world.DocumentType) ([]*world.Document, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*world.Document, 0, len(w.docs[t]))
	for _, d := range w.docs[t] {
		out = append(out, d.Clone())
	}
	return out, nil
}

// CreateThumbnail implements world.Store. The in-memory host does not render
// images; it returns a stable path for the scene.
func (w *World) CreateThumbnail(_ context.Context, sceneID string) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if err := w.failure(OpCreateThumbnail); err != nil {
		return "", err
	}
	for _, d := range w.docs[world.Scene] {
		if d.ID == sceneID {
			return "thumbs/" + sceneID + ".webp", nil
		}
	}
	return "", fmt.Errorf("scene %q: %w", sceneID, world.ErrNotFound)
}

// Setting implements world.Settings.
func (w *World) Setting(_ context.Context, module, key string) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings[module+"."+key], nil
}

// SetSetting implements world.Settings.
func (w *World) SetSetting(_ context.Context, module, key string, value bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.failure(OpSetSetting); err != nil {
		return err
	}
	w.settings[module+"."+key] = value
	return nil
}

// RecordRun implements world.RunLog.
func (w *World) RecordRun(_ context.Context, run world.Run) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.runs = append(w.runs, run)
	return nil
}

// Runs returns every recorded import run.
func (w *World) Runs() []world.Run {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]world.Run, len(w.runs))
	copy(out, w.runs)
	return out
}
