package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// EntityImporter creates journals, actors and items from content sources and
// records their ids by name.
type EntityImporter struct {
	store    world.Store
	registry *Registry
	module   string
	notifier Notifier
	logger   *zap.Logger
}

// NewEntityImporter constructs an EntityImporter.
//
// Precondition: every argument must be non-nil.
func NewEntityImporter(store world.Store, registry *Registry, module string, notifier Notifier, logger *zap.Logger) *EntityImporter {
	return &EntityImporter{store: store, registry: registry, module: module, notifier: notifier, logger: logger}
}

// Import creates every document of src in one batch. Each document is placed
// in the folder chosen by its folder flag or by placement; a document whose
// folder name is not registered is skipped with a TierItem problem while its
// siblings proceed. A failed fetch or a rejected batch records a TierStage
// problem for src and returns without creating anything.
//
// Postcondition: Every created document's name maps to its id in the registry
// and exactly one progress notification is emitted for src.
func (e *EntityImporter) Import(ctx context.Context, src Source, placement Placement, report *Report) {
	t := src.Type()
	log := e.logger.With(zap.String("pack", src.Name()), zap.String("type", string(t)))

	docs, err := src.Documents(ctx)
	if err != nil {
		log.Error("fetching pack", zap.Error(err))
		report.problem(StageEntities, TierStage, fmt.Errorf("fetching pack %s: %w", src.Name(), err))
		e.notifier.Notify(failedMessage(t, src))
		return
	}

	ready := make([]*world.Document, 0, len(docs))
	digests := make([]string, 0, len(docs))
	for _, doc := range docs {
		doc.Type = t
		digest := Digest(doc)
		if err := placeDocument(doc, e.module, placement, e.registry); err != nil {
			log.Error("placing document", zap.String("name", doc.Name), zap.Error(err))
			report.problem(StageEntities, TierItem, err)
			continue
		}
		ready = append(ready, doc)
		digests = append(digests, digest)
	}
	if len(ready) == 0 {
		e.notifier.Notify(fmt.Sprintf("Imported 0 %s from %s", t, src.Name()))
		return
	}

	created, err := e.store.CreateDocuments(ctx, t, ready)
	if err != nil {
		log.Error("creating documents", zap.Error(err))
		report.problem(StageEntities, TierStage, fmt.Errorf("creating %s from %s: %w", t, src.Name(), err))
		e.notifier.Notify(failedMessage(t, src))
		return
	}

	recordCreated(e.registry, t, created, digests, report, StageEntities)
	log.Info("documents created", zap.Int("count", len(created)))
	e.notifier.Notify(fmt.Sprintf("Imported %d %s from %s", len(created), t, src.Name()))
}

// failedMessage is the notification for a source batch that created nothing
// because it could not be fetched or was rejected.
func failedMessage(t world.DocumentType, src Source) string {
	return fmt.Sprintf("Failed to import %s from %s", t, src.Name())
}

// placeDocument resolves doc's destination folder and sort in place.
func placeDocument(doc *world.Document, module string, placement Placement, registry *Registry) error {
	applySortFlag(doc, module)
	doc.Folder = ""
	name, ok := destination(doc, module, placement)
	if !ok {
		return nil
	}
	id, ok := registry.Folder(doc.Type, name)
	if !ok {
		return &ReferenceError{Kind: RefFolder, Type: doc.Type, Name: name, Owner: string(doc.Type) + " " + doc.Name}
	}
	doc.Folder = id
	return nil
}

// recordCreated indexes created documents by name and appends run records.
func recordCreated(registry *Registry, t world.DocumentType, created []*world.Document, digests []string, report *Report, stage string) {
	for i, d := range created {
		if err := registry.Record(t, d.Name, d.ID); err != nil {
			report.problem(stage, TierItem, err)
		}
		digest := ""
		if i < len(digests) {
			digest = digests[i]
		}
		report.Records = append(report.Records, world.RunRecord{
			Type:       t,
			Name:       d.Name,
			DocumentID: d.ID,
			Digest:     digest,
		})
	}
	report.Created[t] += len(created)
}
