package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/worldseed/internal/storage/postgres"
	"github.com/cory-johannsen/worldseed/internal/testutil"
	"github.com/cory-johannsen/worldseed/internal/world"
)

func TestWorld_Folders(t *testing.T) {
	w := testutil.NewWorld(t)
	ctx := context.Background()

	created, err := w.CreateFolders(ctx, []*world.Folder{
		{Name: "SCENE 1", Type: world.JournalEntry},
		{Name: "SCENE 1", Type: world.Scene, Color: "#ff0000"},
		{Name: "Chapter", Type: world.JournalEntry, Flags: world.Flags{}.Set("dgr", "initialization-parent", "SCENE 1")},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)
	for _, f := range created {
		assert.NotEmpty(t, f.ID)
		assert.Equal(t, world.SortAlphabetical, f.Sorting)
	}

	found, err := w.FindFolderByName(ctx, world.Scene, "SCENE 1")
	require.NoError(t, err)
	assert.Equal(t, created[1].ID, found.ID)
	assert.Equal(t, "#ff0000", found.Color)

	child := created[2]
	child.Parent = created[0].ID
	require.NoError(t, w.UpdateFolder(ctx, child))

	all, err := w.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, created[0].ID, all[2].Parent)
	parent, ok := all[2].Flags.String("dgr", "initialization-parent")
	assert.True(t, ok)
	assert.Equal(t, "SCENE 1", parent)

	_, err = w.FindFolderByName(ctx, world.Actor, "SCENE 1")
	assert.ErrorIs(t, err, world.ErrNotFound)
}

func TestWorld_Documents(t *testing.T) {
	w := testutil.NewWorld(t)
	ctx := context.Background()

	folders, err := w.CreateFolders(ctx, []*world.Folder{{Name: "INTRODUCTION", Type: world.Scene}})
	require.NoError(t, err)

	journals, err := w.CreateDocuments(ctx, world.JournalEntry, []*world.Document{
		{Name: "Prologue (I)", Data: map[string]any{"content": "<p>Rain.</p>"}},
	})
	require.NoError(t, err)

	scenes, err := w.CreateDocuments(ctx, world.Scene, []*world.Document{{
		Name:   "Market (I)",
		Folder: folders[0].ID,
		Sort:   -100000,
		Notes:  []world.Note{{EntryID: journals[0].ID, X: 10, Y: 20}},
		Tokens: []world.Token{{Name: "Guard", X: 1.5, Y: 2.5}},
		Data:   map[string]any{"width": float64(4000)},
	}})
	require.NoError(t, err)
	scene := scenes[0]
	assert.Equal(t, world.Scene, scene.Type)
	require.Len(t, scene.Notes, 1)
	assert.NotEmpty(t, scene.Notes[0].ID)
	assert.NotEmpty(t, scene.Tokens[0].ID)

	got, err := w.FindDocumentByName(ctx, world.Scene, "Market (I)")
	require.NoError(t, err)
	assert.Equal(t, scene.ID, got.ID)
	assert.Equal(t, folders[0].ID, got.Folder)
	assert.Equal(t, -100000, got.Sort)
	assert.Equal(t, journals[0].ID, got.Notes[0].EntryID)
	assert.Equal(t, float64(4000), got.Data["width"])

	got.Thumb = "thumbs/" + got.ID + ".webp"
	got.Journal = journals[0].ID
	require.NoError(t, w.UpdateDocument(ctx, got))

	listed, err := w.ListDocuments(ctx, world.Scene)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, journals[0].ID, listed[0].Journal)
	assert.Equal(t, got.Thumb, listed[0].Thumb)

	thumb, err := w.CreateThumbnail(ctx, scene.ID)
	require.NoError(t, err)
	assert.Equal(t, "thumbs/"+scene.ID+".webp", thumb)

	_, err = w.CreateThumbnail(ctx, journals[0].ID)
	assert.ErrorIs(t, err, world.ErrNotFound)

	err = w.UpdateDocument(ctx, &world.Document{ID: "missing", Type: world.Actor})
	assert.ErrorIs(t, err, world.ErrNotFound)
}

func TestWorld_CreateDocumentsIsAtomic(t *testing.T) {
	w := testutil.NewWorld(t)
	ctx := context.Background()

	_, err := w.CreateDocuments(ctx, world.Actor, []*world.Document{
		{Name: "Ok"},
		{Name: "Dangling", Folder: "no-such-folder"},
	})
	require.Error(t, err)

	actors, err := w.ListDocuments(ctx, world.Actor)
	require.NoError(t, err)
	assert.Empty(t, actors)
}

func TestWorld_SettingsAndRuns(t *testing.T) {
	w := testutil.NewWorld(t)
	ctx := context.Background()

	v, err := w.Setting(ctx, "dgr-harms-way", "initialized")
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, w.SetSetting(ctx, "dgr-harms-way", "initialized", true))
	v, err = w.Setting(ctx, "dgr-harms-way", "initialized")
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, w.SetSetting(ctx, "dgr-harms-way", "initialized", false))
	v, err = w.Setting(ctx, "dgr-harms-way", "initialized")
	require.NoError(t, err)
	assert.False(t, v)

	now := time.Now().UTC()
	require.NoError(t, w.RecordRun(ctx, world.Run{
		Module:     "dgr-harms-way",
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
		Status:     "complete",
		Records: []world.RunRecord{
			{Type: world.Actor, Name: "Guard", DocumentID: "a1", Digest: "00"},
		},
	}))
}

func TestRunRepository_RecordAndCount(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()
	require.NoError(t, pc.Pool.Health(ctx, 5*time.Second))

	runs := postgres.NewRunRepository(pc.RawPool)
	now := time.Now().UTC()
	id, err := runs.Record(ctx, world.Run{
		Module:     "dgr-harms-way",
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
		Status:     "partial",
		Problems:   1,
		Records: []world.RunRecord{
			{Type: world.JournalEntry, Name: "Prologue (I)", DocumentID: "j1", Digest: "aa"},
			{Type: world.Scene, Name: "Market (I)", DocumentID: "s1", Digest: "bb"},
		},
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	n, err := runs.CountRecords(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	empty, err := runs.Record(ctx, world.Run{Module: "dgr-harms-way", StartedAt: now, FinishedAt: now, Status: "complete"})
	require.NoError(t, err)
	n, err = runs.CountRecords(ctx, empty)
	require.NoError(t, err)
	assert.Zero(t, n)
}
