package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// FolderBuilder creates the manifest folders and links children to parents
// by name.
type FolderBuilder struct {
	store    world.Store
	registry *Registry
	module   string
	logger   *zap.Logger
}

// NewFolderBuilder constructs a FolderBuilder.
//
// Precondition: store, registry and logger must be non-nil; module is the
// flag scope that carries parent names.
func NewFolderBuilder(store world.Store, registry *Registry, module string, logger *zap.Logger) *FolderBuilder {
	return &FolderBuilder{store: store, registry: registry, module: module, logger: logger}
}

// Build creates every folder in one batch, indexes the created folders by
// (type, name), then links each folder carrying a parent-name flag to the
// folder of the same type with that name. Linking starts only after every
// folder exists, so manifest order does not matter.
//
// Postcondition: Returns the created folders with parents assigned. An
// unresolved parent or a rejected update is recorded in report as a
// TierStage problem for that folder only. A rejected batch create returns an
// error.
func (b *FolderBuilder) Build(ctx context.Context, manifest []*world.Folder, report *Report) ([]*world.Folder, error) {
	created, err := b.store.CreateFolders(ctx, manifest)
	if err != nil {
		return nil, fmt.Errorf("creating folders: %w", err)
	}
	report.Folders += len(created)

	for _, f := range created {
		b.registry.RecordFolder(f.Type, f.Name, f.ID)
	}

	for _, f := range created {
		parent, ok := f.Flags.String(b.module, FlagParent)
		if !ok {
			continue
		}
		parentID, ok := b.registry.Folder(f.Type, parent)
		if !ok {
			err := &ReferenceError{Kind: RefParent, Type: f.Type, Name: parent, Owner: "folder " + f.Name}
			b.logger.Error("linking folder",
				zap.String("folder", f.Name),
				zap.String("parent", parent),
				zap.Error(err),
			)
			report.problem(StageFolders, TierStage, err)
			continue
		}
		f.Parent = parentID
		if err := b.store.UpdateFolder(ctx, f); err != nil {
			b.logger.Error("updating folder parent",
				zap.String("folder", f.Name),
				zap.Error(err),
			)
			report.problem(StageFolders, TierStage, fmt.Errorf("updating folder %q: %w", f.Name, err))
			f.Parent = ""
			continue
		}
	}

	b.logger.Info("folders created", zap.Int("count", len(created)))
	return created, nil
}
