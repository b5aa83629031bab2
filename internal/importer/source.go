package importer

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// Source yields the documents of one content pack. Every document a Source
// returns has the Source's declared type.
//
// Postcondition: Documents returns fresh copies the caller may mutate, or a
// non-nil error.
type Source interface {
	Name() string
	Type() world.DocumentType
	Documents(ctx context.Context) ([]*world.Document, error)
}

// ManifestSource yields the folder manifest.
type ManifestSource interface {
	Folders(ctx context.Context) ([]*world.Folder, error)
}

// Notifier receives one progress notification per imported source batch.
type Notifier interface {
	Notify(msg string)
}

// LogNotifier reports progress through a zap logger.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(msg string) {
	n.Logger.Info(msg)
}
