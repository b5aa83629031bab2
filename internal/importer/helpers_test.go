package importer_test

import (
	"context"
	"errors"
	"sync"

	"github.com/cory-johannsen/worldseed/internal/importer"
	"github.com/cory-johannsen/worldseed/internal/pack"
	"github.com/cory-johannsen/worldseed/internal/world"
	"github.com/cory-johannsen/worldseed/internal/world/memworld"
)

const module = "dgr-harms-way"

// staticManifest serves a fixed folder list.
type staticManifest []*world.Folder

func (m staticManifest) Folders(_ context.Context) ([]*world.Folder, error) {
	out := make([]*world.Folder, len(m))
	for i, f := range m {
		out[i] = f.Clone()
	}
	return out, nil
}

// failingManifest always fails to load.
type failingManifest struct{ err error }

func (m failingManifest) Folders(_ context.Context) ([]*world.Folder, error) {
	return nil, m.err
}

// failingSource always fails to fetch.
type failingSource struct {
	name string
	t    world.DocumentType
}

func (s failingSource) Name() string             { return s.name }
func (s failingSource) Type() world.DocumentType { return s.t }
func (s failingSource) Documents(_ context.Context) ([]*world.Document, error) {
	return nil, errors.New("pack unreadable")
}

// recordingNotifier keeps every notification.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

// thumbFailWorld fails thumbnail creation for scenes with the given names.
type thumbFailWorld struct {
	*memworld.World
	fail map[string]bool
}

func (w *thumbFailWorld) CreateThumbnail(ctx context.Context, sceneID string) (string, error) {
	scenes, err := w.ListDocuments(ctx, world.Scene)
	if err != nil {
		return "", err
	}
	for _, s := range scenes {
		if s.ID == sceneID && w.fail[s.Name] {
			return "", errors.New("renderer offline")
		}
	}
	return w.World.CreateThumbnail(ctx, sceneID)
}

func source(t world.DocumentType, docs ...*world.Document) importer.Source {
	return &pack.Static{PackName: module + "-" + string(t), DocType: t, Docs: docs}
}

func flagged(key, value string) world.Flags {
	return world.Flags{}.Set(module, key, value)
}

func folderByName(t world.DocumentType, folders []*world.Folder, name string) *world.Folder {
	for _, f := range folders {
		if f.Type == t && f.Name == name {
			return f
		}
	}
	return nil
}

func docsByName(docs []*world.Document) map[string][]*world.Document {
	out := make(map[string][]*world.Document, len(docs))
	for _, d := range docs {
		out[d.Name] = append(out[d.Name], d)
	}
	return out
}
