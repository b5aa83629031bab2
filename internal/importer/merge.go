package importer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// mergeStride spaces merged entries so each can hold a text and an image page.
const mergeStride = 200_000

// MergeJournals collapses every journal entry in the JournalEntry folder named
// folderName into one new entry named after the folder, created in the
// folder's parent. Entries are taken in folder order (manual sort when the
// folder sorts manually, alphabetical otherwise); from each, the first text
// page and first image page are kept. The text page gets a visible title and
// sort (i+1)*200000; the image page follows it 100000 lower.
//
// Postcondition: Returns the created entry, or an error wrapping
// ErrReferenceNotFound when the folder does not exist.
func MergeJournals(ctx context.Context, store world.Store, folderName string, logger *zap.Logger) (*world.Document, error) {
	folder, err := store.FindFolderByName(ctx, world.JournalEntry, folderName)
	if errors.Is(err, world.ErrNotFound) {
		return nil, fmt.Errorf("merging %q: %w: %w", folderName, ErrReferenceNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("finding folder %q: %w", folderName, err)
	}
	all, err := store.ListDocuments(ctx, world.JournalEntry)
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}
	var entries []*world.Document
	for _, d := range all {
		if d.Folder == folder.ID {
			entries = append(entries, d)
		}
	}
	if folder.Sorting == world.SortManual {
		slices.SortStableFunc(entries, func(a, b *world.Document) int {
			return cmp.Or(cmp.Compare(a.Sort, b.Sort), cmp.Compare(a.Name, b.Name))
		})
	} else {
		slices.SortStableFunc(entries, func(a, b *world.Document) int {
			return cmp.Compare(a.Name, b.Name)
		})
	}

	var pages []any
	for i, entry := range entries {
		sort := (i + 1) * mergeStride
		text, image := firstPages(entry)
		if text != nil {
			title, _ := text["title"].(map[string]any)
			title = cloneMap(title)
			title["show"] = true
			text["title"] = title
			text["sort"] = sort
			pages = append(pages, text)
			sort -= mergeStride / 2
		}
		if image != nil {
			image["sort"] = sort
			pages = append(pages, image)
		}
	}

	merged := &world.Document{
		Type:   world.JournalEntry,
		Name:   folder.Name,
		Folder: folder.Parent,
		Data:   map[string]any{"pages": pages},
	}
	created, err := store.CreateDocuments(ctx, world.JournalEntry, []*world.Document{merged})
	if err != nil {
		return nil, fmt.Errorf("creating merged journal %q: %w", folder.Name, err)
	}
	logger.Info("journals merged",
		zap.String("folder", folder.Name),
		zap.Int("entries", len(entries)),
		zap.Int("pages", len(pages)),
	)
	return created[0], nil
}

// firstPages returns copies of the first text and first image page of entry.
func firstPages(entry *world.Document) (text, image map[string]any) {
	raw, _ := entry.Data["pages"].([]any)
	for _, p := range raw {
		page, ok := p.(map[string]any)
		if !ok {
			continue
		}
		switch page["type"] {
		case "text":
			if text == nil {
				text = cloneMap(page)
			}
		case "image":
			if image == nil {
				image = cloneMap(page)
			}
		}
	}
	return text, image
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
