package importer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// DefaultThumbnailConcurrency bounds concurrent thumbnail renders.
const DefaultThumbnailConcurrency = 4

// SceneImporter creates scenes, rewriting their folder, journal, note and
// token references from names to the ids recorded by earlier stages.
type SceneImporter struct {
	store       world.Store
	registry    *Registry
	module      string
	notifier    Notifier
	logger      *zap.Logger
	concurrency int
}

// NewSceneImporter constructs a SceneImporter. A concurrency below 1 uses
// DefaultThumbnailConcurrency.
//
// Precondition: store, registry, notifier and logger must be non-nil.
func NewSceneImporter(store world.Store, registry *Registry, module string, notifier Notifier, logger *zap.Logger, concurrency int) *SceneImporter {
	if concurrency < 1 {
		concurrency = DefaultThumbnailConcurrency
	}
	return &SceneImporter{
		store:       store,
		registry:    registry,
		module:      module,
		notifier:    notifier,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Import creates every scene of src in one batch, then renders and attaches
// a thumbnail to each created scene.
//
// A scene whose folder does not resolve is skipped (TierItem). A journal,
// note or token name that does not resolve is recorded as TierRecoverable
// and that reference keeps its pack value; the scene is still created.
// Thumbnail failures are TierRecoverable.
//
// Postcondition: Import returns after every thumbnail attempt has finished,
// having emitted exactly one progress notification for src.
func (s *SceneImporter) Import(ctx context.Context, src Source, placement Placement, report *Report) {
	log := s.logger.With(zap.String("pack", src.Name()))

	docs, err := src.Documents(ctx)
	if err != nil {
		log.Error("fetching pack", zap.Error(err))
		report.problem(StageScenes, TierStage, fmt.Errorf("fetching pack %s: %w", src.Name(), err))
		s.notifier.Notify(failedMessage(world.Scene, src))
		return
	}

	ready := make([]*world.Document, 0, len(docs))
	digests := make([]string, 0, len(docs))
	for _, doc := range docs {
		doc.Type = world.Scene
		digest := Digest(doc)
		if err := placeDocument(doc, s.module, placement, s.registry); err != nil {
			log.Error("placing scene", zap.String("scene", doc.Name), zap.Error(err))
			report.problem(StageScenes, TierItem, err)
			continue
		}
		for _, err := range s.resolveReferences(doc) {
			log.Error("resolving scene reference", zap.String("scene", doc.Name), zap.Error(err))
			report.problem(StageScenes, TierRecoverable, err)
		}
		log.Debug("creating scene", zap.String("scene", doc.Name))
		ready = append(ready, doc)
		digests = append(digests, digest)
	}
	if len(ready) == 0 {
		s.notifier.Notify(fmt.Sprintf("Imported 0 %s from %s", world.Scene, src.Name()))
		return
	}

	created, err := s.store.CreateDocuments(ctx, world.Scene, ready)
	if err != nil {
		log.Error("creating scenes", zap.Error(err))
		report.problem(StageScenes, TierStage, fmt.Errorf("creating scenes from %s: %w", src.Name(), err))
		s.notifier.Notify(failedMessage(world.Scene, src))
		return
	}
	recordCreated(s.registry, world.Scene, created, digests, report, StageScenes)

	for _, err := range s.attachThumbnails(ctx, created) {
		report.problem(StageScenes, TierRecoverable, err)
	}

	log.Info("scenes created", zap.Int("count", len(created)))
	s.notifier.Notify(fmt.Sprintf("Imported %d %s from %s", len(created), world.Scene, src.Name()))
}

// resolveReferences rewrites the journal link, note entries and token actors
// of doc in place and returns one error per reference that did not resolve.
func (s *SceneImporter) resolveReferences(doc *world.Document) []error {
	var errs []error
	owner := "scene " + doc.Name

	if name, ok := doc.Flags.String(s.module, FlagJournal); ok {
		if id, found := s.registry.Lookup(world.JournalEntry, name); found {
			doc.Journal = id
		} else {
			errs = append(errs, &ReferenceError{Kind: RefJournal, Type: world.JournalEntry, Name: name, Owner: owner})
		}
	}

	for i := range doc.Notes {
		name, ok := doc.Notes[i].Flags.String(s.module, FlagEntry)
		if !ok {
			continue
		}
		id, found := s.registry.Lookup(world.JournalEntry, name)
		if !found {
			errs = append(errs, &ReferenceError{Kind: RefNote, Type: world.JournalEntry, Name: name, Owner: owner})
			continue
		}
		doc.Notes[i].EntryID = id
	}

	for i := range doc.Tokens {
		name, ok := doc.Tokens[i].Flags.String(s.module, FlagActor)
		if !ok {
			continue
		}
		id, found := s.registry.Lookup(world.Actor, name)
		if !found {
			errs = append(errs, &ReferenceError{Kind: RefToken, Type: world.Actor, Name: name, Owner: owner})
			continue
		}
		doc.Tokens[i].ActorID = id
	}
	return errs
}

// attachThumbnails renders a thumbnail for each scene and stores its path.
// One scene's failure does not cancel the others.
func (s *SceneImporter) attachThumbnails(ctx context.Context, scenes []*world.Document) []error {
	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(s.concurrency)
	for _, scene := range scenes {
		g.Go(func() error {
			thumb, err := s.store.CreateThumbnail(ctx, scene.ID)
			if err == nil {
				scene.Thumb = thumb
				err = s.store.UpdateDocument(ctx, scene)
			}
			if err != nil {
				s.logger.Warn("attaching thumbnail", zap.String("scene", scene.Name), zap.Error(err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("thumbnail for scene %q: %w", scene.Name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
