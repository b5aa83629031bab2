// Package importer imports bundled content packs into a live world: folders
// first, then journals, actors and items, then scenes whose embedded
// references are resolved by name against what the earlier stages created.
package importer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// Content bundles the manifest and the content sources for one run. Items
// may be nil.
type Content struct {
	Manifest ManifestSource
	Journals Source
	Actors   Source
	Items    Source
	Scenes   Source
}

// Options configures a Pipeline.
type Options struct {
	// Module is the flag and setting scope, e.g. "dgr-harms-way".
	Module string
	// Profile places documents into folders.
	Profile Profile
	// ThumbnailConcurrency bounds concurrent thumbnail renders.
	ThumbnailConcurrency int
	// Notifier receives progress notifications; nil logs them.
	Notifier Notifier
}

// Pipeline runs the staged import against a Store.
type Pipeline struct {
	store  world.Store
	opts   Options
	logger *zap.Logger
}

// NewPipeline constructs a Pipeline.
//
// Precondition: store and logger must be non-nil; opts.Module must be non-empty.
func NewPipeline(store world.Store, opts Options, logger *zap.Logger) *Pipeline {
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{Logger: logger}
	}
	return &Pipeline{store: store, opts: opts, logger: logger}
}

// Run imports content in stage order: folders, then journals, actors and
// items, then scenes. Each run uses a fresh Registry; nothing created by an
// earlier run is detected, so running twice creates everything twice.
//
// Postcondition: Returns a Report for a run that reached the entity stages.
// A manifest that cannot be read or a rejected folder batch returns an error
// and creates no documents.
func (p *Pipeline) Run(ctx context.Context, content Content) (*Report, error) {
	start := time.Now()
	report := NewReport()
	registry := NewRegistry()

	manifest, err := content.Manifest.Folders(ctx)
	if err != nil {
		return report, fmt.Errorf("loading manifest: %w", err)
	}

	t0 := time.Now()
	folders := NewFolderBuilder(p.store, registry, p.opts.Module, p.logger)
	if _, err := folders.Build(ctx, manifest, report); err != nil {
		return report, err
	}
	p.logger.Info("stage complete",
		zap.String("stage", StageFolders),
		zap.Duration("elapsed", time.Since(t0)),
	)

	t1 := time.Now()
	entities := NewEntityImporter(p.store, registry, p.opts.Module, p.opts.Notifier, p.logger)
	stages := []struct {
		src       Source
		placement Placement
	}{
		{content.Journals, p.opts.Profile.Journals},
		{content.Actors, p.opts.Profile.Actors},
		{content.Items, p.opts.Profile.Items},
	}
	for _, st := range stages {
		if st.src == nil {
			continue
		}
		entities.Import(ctx, st.src, st.placement, report)
	}
	for _, t := range []world.DocumentType{world.JournalEntry, world.Actor, world.Item} {
		registry.Seal(t)
	}
	p.logger.Info("stage complete",
		zap.String("stage", StageEntities),
		zap.Duration("elapsed", time.Since(t1)),
	)

	if content.Scenes != nil {
		t2 := time.Now()
		scenes := NewSceneImporter(p.store, registry, p.opts.Module, p.opts.Notifier, p.logger, p.opts.ThumbnailConcurrency)
		scenes.Import(ctx, content.Scenes, p.opts.Profile.Scenes, report)
		registry.Seal(world.Scene)
		p.logger.Info("stage complete",
			zap.String("stage", StageScenes),
			zap.Duration("elapsed", time.Since(t2)),
		)
	}

	p.logger.Info("import complete",
		zap.Int("folders", report.Folders),
		zap.Int("documents", len(report.Records)),
		zap.Int("problems", len(report.Problems)),
		zap.Duration("total", time.Since(start)),
	)
	return report, nil
}
