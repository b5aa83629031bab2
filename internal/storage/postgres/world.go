package postgres

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// World is a world host persisted in PostgreSQL.
type World struct {
	folders   *FolderRepository
	documents *DocumentRepository
	settings  *SettingRepository
	runs      *RunRepository
	thumbDir  string
}

var (
	_ world.Store    = (*World)(nil)
	_ world.Settings = (*World)(nil)
	_ world.RunLog   = (*World)(nil)
)

// NewWorld composes the repositories of pool into a world host. Scene
// thumbnails are addressed under thumbDir.
//
// Precondition: pool must be open and migrated.
func NewWorld(pool *Pool, thumbDir string) *World {
	db := pool.DB()
	return &World{
		folders:   NewFolderRepository(db),
		documents: NewDocumentRepository(db),
		settings:  NewSettingRepository(db),
		runs:      NewRunRepository(db),
		thumbDir:  thumbDir,
	}
}

// CreateFolders assigns ids and inserts folders atomically.
//
// Postcondition: Returns copies of the stored folders in input order.
func (w *World) CreateFolders(ctx context.Context, folders []*world.Folder) ([]*world.Folder, error) {
	created := make([]*world.Folder, len(folders))
	for i, f := range folders {
		c := f.Clone()
		c.ID = uuid.NewString()
		c.Sorting = sortingOrDefault(c.Sorting)
		created[i] = c
	}
	if err := w.folders.CreateBatch(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateFolder replaces the folder with the same id.
func (w *World) UpdateFolder(ctx context.Context, f *world.Folder) error {
	return w.folders.Update(ctx, f)
}

// FindFolderByName returns the first folder of type t named name.
func (w *World) FindFolderByName(ctx context.Context, t world.DocumentType, name string) (*world.Folder, error) {
	return w.folders.FindByName(ctx, t, name)
}

// ListFolders returns every folder in creation order.
func (w *World) ListFolders(ctx context.Context) ([]*world.Folder, error) {
	return w.folders.List(ctx)
}

// CreateDocuments assigns ids to documents, notes and tokens and inserts
// them atomically.
//
// Postcondition: Returns copies of the stored documents in input order.
func (w *World) CreateDocuments(ctx context.Context, t world.DocumentType, docs []*world.Document) ([]*world.Document, error) {
	created := make([]*world.Document, len(docs))
	for i, d := range docs {
		c := d.Clone()
		c.ID = uuid.NewString()
		c.Type = t
		for j := range c.Notes {
			if c.Notes[j].ID == "" {
				c.Notes[j].ID = uuid.NewString()
			}
		}
		for j := range c.Tokens {
			if c.Tokens[j].ID == "" {
				c.Tokens[j].ID = uuid.NewString()
			}
		}
		created[i] = c
	}
	if err := w.documents.CreateBatch(ctx, t, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateDocument replaces the document with the same id.
func (w *World) UpdateDocument(ctx context.Context, d *world.Document) error {
	return w.documents.Update(ctx, d)
}

// FindDocumentByName returns the first document of type t named name.
func (w *World) FindDocumentByName(ctx context.Context, t world.DocumentType, name string) (*world.Document, error) {
	return w.documents.FindByName(ctx, t, name)
}

// ListDocuments returns every document of type t in creation order.
func (w *World) ListDocuments(ctx context.Context, t world.DocumentType) ([]*world.Document, error) {
	return w.documents.ListByType(ctx, t)
}

// CreateThumbnail returns the thumbnail path for an existing scene.
//
// Postcondition: Returns world.ErrNotFound when sceneID is not a scene.
func (w *World) CreateThumbnail(ctx context.Context, sceneID string) (string, error) {
	d, err := w.documents.GetByID(ctx, sceneID)
	if err != nil {
		return "", err
	}
	if d.Type != world.Scene {
		return "", fmt.Errorf("%s %q is not a scene: %w", d.Type, sceneID, world.ErrNotFound)
	}
	return path.Join(w.thumbDir, sceneID+".webp"), nil
}

// Setting returns module/key, false when unset.
func (w *World) Setting(ctx context.Context, module, key string) (bool, error) {
	return w.settings.Get(ctx, module, key)
}

// SetSetting stores value under module/key.
func (w *World) SetSetting(ctx context.Context, module, key string, value bool) error {
	return w.settings.Set(ctx, module, key, value)
}

// RecordRun appends run to the import log.
func (w *World) RecordRun(ctx context.Context, run world.Run) error {
	_, err := w.runs.Record(ctx, run)
	return err
}
