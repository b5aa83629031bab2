package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// Exporter is the inverse of Pipeline: it rewrites id references in an
// authored world as name flags so the world can be captured as a manifest
// plus packs and imported elsewhere.
type Exporter struct {
	store  world.Store
	module string
	logger *zap.Logger
}

// NewExporter constructs an Exporter.
//
// Precondition: store and logger must be non-nil; module must be non-empty.
func NewExporter(store world.Store, module string, logger *zap.Logger) *Exporter {
	return &Exporter{store: store, module: module, logger: logger}
}

// Capture is an annotated world ready to be written out.
type Capture struct {
	// Manifest lists folders with every parent ahead of its children.
	Manifest []*world.Folder
	// Documents holds every document by type, in store order.
	Documents map[world.DocumentType][]*world.Document
}

// Annotate writes name flags onto every folder, document, note and token:
// folders get their parent's name, documents their folder's name and sort,
// scenes their journal's name, notes and tokens their target's name. Ids
// that do not resolve are recorded as TierRecoverable and left unannotated.
//
// Postcondition: Every folder and document has been updated in the store, or
// the first store error is returned.
func (e *Exporter) Annotate(ctx context.Context) (*Report, error) {
	report := NewReport()

	folders, err := e.store.ListFolders(ctx)
	if err != nil {
		return report, fmt.Errorf("listing folders: %w", err)
	}
	folderNames := make(map[string]string, len(folders))
	for _, f := range folders {
		folderNames[f.ID] = f.Name
	}
	for _, f := range folders {
		f.Flags.Unset(e.module, FlagParent)
		if f.Parent != "" {
			if name, ok := folderNames[f.Parent]; ok {
				f.Flags = f.Flags.Set(e.module, FlagParent, name)
			} else {
				report.problem(StageExport, TierRecoverable,
					&ReferenceError{Kind: RefParent, Type: f.Type, Name: f.Parent, Owner: "folder " + f.Name})
			}
		}
		if err := e.store.UpdateFolder(ctx, f); err != nil {
			return report, fmt.Errorf("annotating folder %q: %w", f.Name, err)
		}
	}

	names := make(map[world.DocumentType]map[string]string, len(world.DocumentTypes))
	docs := make(map[world.DocumentType][]*world.Document, len(world.DocumentTypes))
	for _, t := range world.DocumentTypes {
		list, err := e.store.ListDocuments(ctx, t)
		if err != nil {
			return report, fmt.Errorf("listing %s: %w", t, err)
		}
		docs[t] = list
		names[t] = make(map[string]string, len(list))
		for _, d := range list {
			names[t][d.ID] = d.Name
		}
	}

	for _, t := range world.DocumentTypes {
		for _, d := range docs[t] {
			e.annotateDocument(d, folderNames, names, report)
			if err := e.store.UpdateDocument(ctx, d); err != nil {
				return report, fmt.Errorf("annotating %s %q: %w", t, d.Name, err)
			}
		}
		e.logger.Info("annotated documents", zap.String("type", string(t)), zap.Int("count", len(docs[t])))
	}
	return report, nil
}

func (e *Exporter) annotateDocument(d *world.Document, folderNames map[string]string, names map[world.DocumentType]map[string]string, report *Report) {
	owner := string(d.Type) + " " + d.Name
	d.Flags.Unset(e.module, FlagFolder)
	if d.Folder != "" {
		if name, ok := folderNames[d.Folder]; ok {
			d.Flags = d.Flags.Set(e.module, FlagFolder, name)
		} else {
			report.problem(StageExport, TierRecoverable,
				&ReferenceError{Kind: RefFolder, Type: d.Type, Name: d.Folder, Owner: owner})
		}
	}
	d.Flags = d.Flags.Set(e.module, FlagSort, d.Sort)

	if d.Type != world.Scene {
		return
	}
	d.Flags.Unset(e.module, FlagJournal)
	if d.Journal != "" {
		if name, ok := names[world.JournalEntry][d.Journal]; ok {
			d.Flags = d.Flags.Set(e.module, FlagJournal, name)
		} else {
			report.problem(StageExport, TierRecoverable,
				&ReferenceError{Kind: RefJournal, Type: world.JournalEntry, Name: d.Journal, Owner: owner})
		}
	}
	for i := range d.Notes {
		n := &d.Notes[i]
		n.Flags.Unset(e.module, FlagEntry)
		if n.EntryID == "" {
			continue
		}
		name, ok := names[world.JournalEntry][n.EntryID]
		if !ok {
			report.problem(StageExport, TierRecoverable,
				&ReferenceError{Kind: RefNote, Type: world.JournalEntry, Name: n.EntryID, Owner: owner})
			continue
		}
		n.Flags = n.Flags.Set(e.module, FlagEntry, name)
	}
	for i := range d.Tokens {
		tk := &d.Tokens[i]
		tk.Flags.Unset(e.module, FlagActor)
		if tk.ActorID == "" {
			continue
		}
		name, ok := names[world.Actor][tk.ActorID]
		if !ok {
			report.problem(StageExport, TierRecoverable,
				&ReferenceError{Kind: RefToken, Type: world.Actor, Name: tk.ActorID, Owner: owner})
			continue
		}
		tk.Flags = tk.Flags.Set(e.module, FlagActor, name)
	}
}

// Capture reads the annotated world back out. Folders are ordered so that a
// parent always precedes its children; folders caught in a parent cycle are
// emitted after the rest in store order.
//
// Precondition: Annotate has run, otherwise references are lost.
func (e *Exporter) Capture(ctx context.Context) (*Capture, error) {
	folders, err := e.store.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	c := &Capture{
		Manifest:  orderFolders(folders),
		Documents: make(map[world.DocumentType][]*world.Document, len(world.DocumentTypes)),
	}
	for _, t := range world.DocumentTypes {
		docs, err := e.store.ListDocuments(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", t, err)
		}
		c.Documents[t] = docs
	}
	return c, nil
}

// orderFolders returns folders with parents ahead of children, keeping store
// order among siblings.
func orderFolders(folders []*world.Folder) []*world.Folder {
	byID := make(map[string]*world.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(folders))
	out := make([]*world.Folder, 0, len(folders))
	var deferred []*world.Folder

	var visit func(f *world.Folder) bool
	visit = func(f *world.Folder) bool {
		switch state[f.ID] {
		case done:
			return true
		case visiting:
			return false
		}
		state[f.ID] = visiting
		if p, ok := byID[f.Parent]; ok && f.Parent != "" {
			if !visit(p) {
				state[f.ID] = unvisited
				return false
			}
		}
		state[f.ID] = done
		out = append(out, f)
		return true
	}
	for _, f := range folders {
		if !visit(f) {
			deferred = append(deferred, f)
		}
	}
	for _, f := range deferred {
		if state[f.ID] != done {
			state[f.ID] = done
			out = append(out, f)
		}
	}
	return out
}
