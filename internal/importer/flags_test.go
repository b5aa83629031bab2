package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/worldseed/internal/importer"
	"github.com/cory-johannsen/worldseed/internal/world"
)

func TestDigest_IgnoresHostFields(t *testing.T) {
	a := &world.Document{Type: world.Actor, Name: "Guard", Data: map[string]any{"hp": 12}}
	b := a.Clone()
	b.ID = "assigned-later"
	b.Folder = "folder-id"
	b.Thumb = "thumbs/x.webp"
	assert.Equal(t, importer.Digest(a), importer.Digest(b))
}

func TestDigest_ChangesWithContent(t *testing.T) {
	a := &world.Document{Type: world.Actor, Name: "Guard", Data: map[string]any{"hp": 12}}
	b := &world.Document{Type: world.Actor, Name: "Guard", Data: map[string]any{"hp": 13}}
	assert.NotEqual(t, importer.Digest(a), importer.Digest(b))
	assert.Len(t, importer.Digest(a), 64)
}

// Property: digests do not depend on map insertion order.
func TestPropertyDigestStable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,6}`), 1, 8, rapid.ID[string]).Draw(t, "keys")
		fwd := make(map[string]any, len(keys))
		rev := make(map[string]any, len(keys))
		for i, k := range keys {
			fwd[k] = i
		}
		for i := len(keys) - 1; i >= 0; i-- {
			rev[keys[i]] = i
		}
		a := &world.Document{Type: world.Item, Name: "x", Data: fwd}
		b := &world.Document{Type: world.Item, Name: "x", Data: rev}
		if importer.Digest(a) != importer.Digest(b) {
			t.Fatalf("digest differs for equal payloads")
		}
	})
}
