// Package pack reads and writes the bundled content: the folder manifest and
// the per-type content packs.
package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// manifestFolder is the on-disk form of one manifest entry. Ids and parent
// ids are never carried; parents are named through flags.
type manifestFolder struct {
	Name    string      `yaml:"name" json:"name"`
	Type    string      `yaml:"type" json:"type"`
	Sort    int         `yaml:"sort,omitempty" json:"sort,omitempty"`
	Sorting string      `yaml:"sorting,omitempty" json:"sorting,omitempty"`
	Color   string      `yaml:"color,omitempty" json:"color,omitempty"`
	Flags   world.Flags `yaml:"flags,omitempty" json:"flags,omitempty"`
}

// ParseManifest parses a manifest document. YAML and JSON are both accepted
// since JSON is valid YAML.
//
// Precondition: data must be a YAML/JSON list of folder objects.
// Postcondition: Returns folders in manifest order with valid types, or a non-nil error.
func ParseManifest(data []byte) ([]*world.Folder, error) {
	var raw []manifestFolder
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	folders := make([]*world.Folder, 0, len(raw))
	for i, mf := range raw {
		if strings.TrimSpace(mf.Name) == "" {
			return nil, fmt.Errorf("manifest entry %d: name must not be empty", i)
		}
		t, err := world.ParseDocumentType(mf.Type)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d (%q): %w", i, mf.Name, err)
		}
		folders = append(folders, &world.Folder{
			Name:    mf.Name,
			Type:    t,
			Sort:    mf.Sort,
			Sorting: mf.Sorting,
			Color:   mf.Color,
			Flags:   mf.Flags,
		})
	}
	return folders, nil
}

// ManifestFile loads the manifest from a path on disk.
type ManifestFile struct {
	Path string
}

// Folders reads and parses the manifest file.
//
// Postcondition: Returns the parsed folders or a non-nil error.
func (m ManifestFile) Folders(_ context.Context) ([]*world.Folder, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", m.Path, err)
	}
	return ParseManifest(data)
}

// MarshalManifest encodes folders as a manifest document. Format is chosen by
// ext: ".json" produces indented JSON, anything else YAML.
//
// Postcondition: The output round-trips through ParseManifest.
func MarshalManifest(folders []*world.Folder, ext string) ([]byte, error) {
	raw := make([]manifestFolder, 0, len(folders))
	for _, f := range folders {
		raw = append(raw, manifestFolder{
			Name:    f.Name,
			Type:    string(f.Type),
			Sort:    f.Sort,
			Sorting: f.Sorting,
			Color:   f.Color,
			Flags:   f.Flags,
		})
	}
	if strings.EqualFold(ext, ".json") {
		data, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding manifest: %w", err)
		}
		return data, nil
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return data, nil
}

// WriteManifest writes folders to path, picking the format from its extension.
//
// Postcondition: path contains a manifest readable by ManifestFile, or an error is returned.
func WriteManifest(path string, folders []*world.Folder) error {
	data, err := MarshalManifest(folders, filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}
