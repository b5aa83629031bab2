package memworld_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/worldseed/internal/world"
	"github.com/cory-johannsen/worldseed/internal/world/memworld"
)

func TestWorld_StoresCopies(t *testing.T) {
	ctx := context.Background()
	w := memworld.New()
	in := &world.Document{Name: "Guard", Flags: world.Flags{}.Set("m", "k", "v")}
	created, err := w.CreateDocuments(ctx, world.Actor, []*world.Document{in})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Empty(t, in.ID, "input is not mutated")
	assert.Equal(t, world.Actor, created[0].Type)

	created[0].Name = "changed"
	got, err := w.FindDocumentByName(ctx, world.Actor, "Guard")
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, got.ID)
}

func TestWorld_FindReturnsFirstCreated(t *testing.T) {
	ctx := context.Background()
	w := memworld.New()
	first, err := w.CreateFolders(ctx, []*world.Folder{{Name: "A", Type: world.Item}})
	require.NoError(t, err)
	_, err = w.CreateFolders(ctx, []*world.Folder{{Name: "A", Type: world.Item}})
	require.NoError(t, err)

	got, err := w.FindFolderByName(ctx, world.Item, "A")
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, got.ID)

	_, err = w.FindFolderByName(ctx, world.Actor, "A")
	assert.ErrorIs(t, err, world.ErrNotFound)
}

func TestWorld_CreateFoldersRejectsInvalidTypeAtomically(t *testing.T) {
	ctx := context.Background()
	w := memworld.New()
	_, err := w.CreateFolders(ctx, []*world.Folder{
		{Name: "ok", Type: world.Item},
		{Name: "bad", Type: "Playlist"},
	})
	require.Error(t, err)
	folders, _ := w.ListFolders(ctx)
	assert.Empty(t, folders)
}

func TestWorld_AssignsEmbeddedIds(t *testing.T) {
	ctx := context.Background()
	w := memworld.New()
	created, err := w.CreateDocuments(ctx, world.Scene, []*world.Document{{
		Name:   "Market",
		Notes:  []world.Note{{}, {ID: "keep"}},
		Tokens: []world.Token{{}},
	}})
	require.NoError(t, err)
	assert.NotEmpty(t, created[0].Notes[0].ID)
	assert.Equal(t, "keep", created[0].Notes[1].ID)
	assert.NotEmpty(t, created[0].Tokens[0].ID)
}

func TestWorld_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	w := memworld.New()
	assert.ErrorIs(t, w.UpdateFolder(ctx, &world.Folder{ID: "x"}), world.ErrNotFound)
	assert.ErrorIs(t, w.UpdateDocument(ctx, &world.Document{ID: "x", Type: world.Item}), world.ErrNotFound)
}

func TestWorld_Thumbnail(t *testing.T) {
	ctx := context.Background()
	w := memworld.New()
	scenes, err := w.CreateDocuments(ctx, world.Scene, []*world.Document{{Name: "Market"}})
	require.NoError(t, err)

	thumb, err := w.CreateThumbnail(ctx, scenes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "thumbs/"+scenes[0].ID+".webp", thumb)

	_, err = w.CreateThumbnail(ctx, "missing")
	assert.ErrorIs(t, err, world.ErrNotFound)
}

func TestWorld_FailOn(t *testing.T) {
	ctx := context.Background()
	w := memworld.New()
	boom := errors.New("boom")
	w.FailOn(memworld.OpCreateDocuments, boom)
	_, err := w.CreateDocuments(ctx, world.Item, []*world.Document{{Name: "Knife"}})
	assert.ErrorIs(t, err, boom)

	w.FailOn(memworld.OpCreateDocuments, nil)
	_, err = w.CreateDocuments(ctx, world.Item, []*world.Document{{Name: "Knife"}})
	assert.NoError(t, err)
}

func TestWorld_SettingsAndRuns(t *testing.T) {
	ctx := context.Background()
	w := memworld.New()
	v, err := w.Setting(ctx, "m", "initialized")
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, w.SetSetting(ctx, "m", "initialized", true))
	v, _ = w.Setting(ctx, "m", "initialized")
	assert.True(t, v)
	v, _ = w.Setting(ctx, "other", "initialized")
	assert.False(t, v)

	require.NoError(t, w.RecordRun(ctx, world.Run{Module: "m", Status: "complete"}))
	runs := w.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "complete", runs[0].Status)
}
