package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/worldseed/internal/world"
)

func TestParseDocumentType(t *testing.T) {
	for _, typ := range world.DocumentTypes {
		got, err := world.ParseDocumentType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
		assert.True(t, got.Valid())
	}
	_, err := world.ParseDocumentType("Playlist")
	assert.Error(t, err)
	assert.False(t, world.DocumentType("").Valid())
}

func TestFlags_NilSafe(t *testing.T) {
	var f world.Flags
	_, ok := f.Get("m", "k")
	assert.False(t, ok)
	f.Unset("m", "k")
	assert.Nil(t, f.Clone())

	f = f.Set("m", "k", "v")
	v, ok := f.String("m", "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestFlags_StringRejectsEmptyAndNonString(t *testing.T) {
	f := world.Flags{}.Set("m", "empty", "").Set("m", "num", 3)
	_, ok := f.String("m", "empty")
	assert.False(t, ok)
	_, ok = f.String("m", "num")
	assert.False(t, ok)
}

func TestFlags_Int(t *testing.T) {
	f := world.Flags{}.
		Set("m", "int", 5).
		Set("m", "int64", int64(6)).
		Set("m", "float", float64(-7)).
		Set("m", "str", "8").
		Set("m", "bad", "eight")
	for key, want := range map[string]int{"int": 5, "int64": 6, "float": -7, "str": 8} {
		got, ok := f.Int("m", key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	_, ok := f.Int("m", "bad")
	assert.False(t, ok)
}

func TestFlags_UnsetDropsEmptyScope(t *testing.T) {
	f := world.Flags{}.Set("m", "k", "v")
	f.Unset("m", "k")
	assert.NotContains(t, f, "m")
}

func TestDocument_CloneIsolatesReferences(t *testing.T) {
	d := &world.Document{
		Name:   "Market",
		Flags:  world.Flags{}.Set("m", "k", "v"),
		Notes:  []world.Note{{EntryID: "e", Flags: world.Flags{}.Set("m", "n", "1")}},
		Tokens: []world.Token{{ActorID: "a"}},
	}
	c := d.Clone()
	c.Flags.Set("m", "k", "changed")
	c.Notes[0].EntryID = "other"
	c.Notes[0].Flags.Set("m", "n", "2")
	c.Tokens[0].ActorID = "other"

	v, _ := d.Flags.String("m", "k")
	assert.Equal(t, "v", v)
	assert.Equal(t, "e", d.Notes[0].EntryID)
	n, _ := d.Notes[0].Flags.String("m", "n")
	assert.Equal(t, "1", n)
	assert.Equal(t, "a", d.Tokens[0].ActorID)
}

// Property: Set followed by Get returns the stored value for any scope/key.
func TestPropertyFlagsSetGet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		scope := rapid.StringMatching(`[a-z-]{1,12}`).Draw(t, "scope")
		key := rapid.StringMatching(`[a-z-]{1,20}`).Draw(t, "key")
		val := rapid.StringMatching(`[A-Za-z0-9 ()]{1,20}`).Draw(t, "val")
		var f world.Flags
		f = f.Set(scope, key, val)
		got, ok := f.String(scope, key)
		if !ok || got != val {
			t.Fatalf("String(%q,%q) = %q, %v; want %q", scope, key, got, ok, val)
		}
		c := f.Clone()
		f.Unset(scope, key)
		if _, ok := c.String(scope, key); !ok {
			t.Fatalf("clone lost %s/%s after Unset on original", scope, key)
		}
	})
}
