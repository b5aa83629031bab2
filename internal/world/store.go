package world

import (
	"context"
	"time"
)

// Store is the host storage surface the importer writes through. Ids are
// assigned by the Store at creation time and are opaque to callers.
type Store interface {
	// CreateFolders creates every folder in one batch and returns the created
	// records, in input order, with ids assigned.
	CreateFolders(ctx context.Context, folders []*Folder) ([]*Folder, error)
	// UpdateFolder replaces the stored folder with the same id.
	UpdateFolder(ctx context.Context, folder *Folder) error
	// FindFolderByName returns the first folder of type t named name, or ErrNotFound.
	FindFolderByName(ctx context.Context, t DocumentType, name string) (*Folder, error)
	// ListFolders returns every folder in creation order.
	ListFolders(ctx context.Context) ([]*Folder, error)

	// CreateDocuments creates every document in one batch and returns the
	// created records, in input order, with ids assigned.
	CreateDocuments(ctx context.Context, t DocumentType, docs []*Document) ([]*Document, error)
	// UpdateDocument replaces the stored document with the same id.
	UpdateDocument(ctx context.Context, doc *Document) error
	// FindDocumentByName returns the first document of type t named name, or ErrNotFound.
	FindDocumentByName(ctx context.Context, t DocumentType, name string) (*Document, error)
	// ListDocuments returns every document of type t in creation order.
	ListDocuments(ctx context.Context, t DocumentType) ([]*Document, error)

	// CreateThumbnail renders a thumbnail for the scene and returns its path.
	CreateThumbnail(ctx context.Context, sceneID string) (string, error)
}

// Settings is the persisted, world-scoped key/value surface.
type Settings interface {
	// Setting returns the boolean stored under module/key, false when unset.
	Setting(ctx context.Context, module, key string) (bool, error)
	// SetSetting stores value under module/key.
	SetSetting(ctx context.Context, module, key string, value bool) error
}

// RunRecord describes one document created during an import run.
type RunRecord struct {
	Type       DocumentType
	Name       string
	DocumentID string
	Digest     string
}

// Run is the audit record of one import run. It is informational only.
type Run struct {
	Module     string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Problems   int
	Records    []RunRecord
}

// RunLog is implemented by hosts that keep an audit trail of import runs.
type RunLog interface {
	RecordRun(ctx context.Context, run Run) error
}
