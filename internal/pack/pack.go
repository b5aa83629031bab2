package pack

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cory-johannsen/worldseed/internal/importer"
	"github.com/cory-johannsen/worldseed/internal/world"
)

var (
	_ importer.Source = (*File)(nil)
	_ importer.Source = (*Static)(nil)
)

// Extension is the file extension of a content pack.
const Extension = ".db"

// maxLine bounds a single pack document; scenes with many tokens run large.
const maxLine = 16 << 20

// reserved keys are lifted out of the payload into Document fields. The
// source id and folder id are meaningless in the target world and dropped.
var reserved = []string{"_id", "name", "folder", "sort", "flags", "journal", "thumb", "notes", "tokens"}

// packDocument is the typed view of the reserved keys of one pack line.
type packDocument struct {
	Name    string        `json:"name"`
	Sort    float64       `json:"sort"`
	Flags   world.Flags   `json:"flags"`
	Journal string        `json:"journal"`
	Thumb   string        `json:"thumb"`
	Notes   []world.Note  `json:"notes"`
	Tokens  []world.Token `json:"tokens"`
}

// DecodeDocument converts one pack line into a Document of type t.
//
// Precondition: line must be a JSON object with a non-empty name.
// Postcondition: Returns a Document with reserved keys lifted into fields and
// the remainder in Data, or a non-nil error.
func DecodeDocument(t world.DocumentType, line []byte) (*world.Document, error) {
	var typed packDocument
	if err := json.Unmarshal(line, &typed); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if typed.Name == "" {
		return nil, errors.New("decoding document: name must not be empty")
	}
	var data map[string]any
	if err := json.Unmarshal(line, &data); err != nil {
		return nil, fmt.Errorf("decoding document payload: %w", err)
	}
	for _, k := range reserved {
		delete(data, k)
	}
	doc := &world.Document{
		Type:  t,
		Name:  typed.Name,
		Sort:  int(typed.Sort),
		Flags: typed.Flags,
		Data:  data,
	}
	if t == world.Scene {
		doc.Journal = typed.Journal
		doc.Thumb = typed.Thumb
		doc.Notes = typed.Notes
		doc.Tokens = typed.Tokens
	}
	return doc, nil
}

// EncodeDocument converts a Document back into a pack line. Ids, folder and
// journal ids are omitted; references travel by name in flags.
//
// Postcondition: DecodeDocument(doc.Type, result) reproduces name, sort,
// flags, payload, notes and tokens.
func EncodeDocument(doc *world.Document) ([]byte, error) {
	out := make(map[string]any, len(doc.Data)+6)
	for k, v := range doc.Data {
		out[k] = v
	}
	out["name"] = doc.Name
	out["sort"] = doc.Sort
	if len(doc.Flags) > 0 {
		out["flags"] = doc.Flags
	}
	if doc.Type == world.Scene {
		notes := make([]world.Note, len(doc.Notes))
		for i, n := range doc.Notes {
			n.ID, n.EntryID = "", ""
			notes[i] = n
		}
		tokens := make([]world.Token, len(doc.Tokens))
		for i, tk := range doc.Tokens {
			tk.ID, tk.ActorID = "", ""
			tokens[i] = tk
		}
		out["notes"] = notes
		out["tokens"] = tokens
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding document %q: %w", doc.Name, err)
	}
	return data, nil
}

// Read decodes every non-blank line of r as a document of type t.
//
// Postcondition: Returns documents in file order or the first decode error,
// annotated with its line number.
func Read(r io.Reader, t world.DocumentType) ([]*world.Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	var docs []*world.Document
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		doc, err := DecodeDocument(t, line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		docs = append(docs, doc)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning pack: %w", err)
	}
	return docs, nil
}

// Write encodes docs to w, one JSON document per line.
func Write(w io.Writer, docs []*world.Document) error {
	bw := bufio.NewWriter(w)
	for _, d := range docs {
		line, err := EncodeDocument(d)
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing document %q: %w", d.Name, err)
		}
	}
	return bw.Flush()
}

// File is a content pack stored as a JSON-lines file.
type File struct {
	PackName string
	Path     string
	DocType  world.DocumentType
	// Optional packs yield no documents when the file does not exist.
	Optional bool
}

// NewFile constructs a File source for pack name under dir.
//
// Postcondition: Path is dir/name + Extension.
func NewFile(dir, name string, t world.DocumentType, optional bool) *File {
	return &File{
		PackName: name,
		Path:     filepath.Join(dir, name+Extension),
		DocType:  t,
		Optional: optional,
	}
}

// Name implements importer.Source.
func (f *File) Name() string { return f.PackName }

// Type implements importer.Source.
func (f *File) Type() world.DocumentType { return f.DocType }

// Documents implements importer.Source.
func (f *File) Documents(_ context.Context) ([]*world.Document, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		if f.Optional && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening pack %s: %w", f.Path, err)
	}
	defer fh.Close()
	docs, err := Read(fh, f.DocType)
	if err != nil {
		return nil, fmt.Errorf("reading pack %s: %w", f.PackName, err)
	}
	return docs, nil
}

// WriteFile writes docs to dir/name + Extension.
func WriteFile(dir, name string, docs []*world.Document) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating pack directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+Extension)
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating pack %s: %w", path, err)
	}
	if err := Write(fh, docs); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// Static is an in-memory source; each call returns fresh clones.
type Static struct {
	PackName string
	DocType  world.DocumentType
	Docs     []*world.Document
}

// Name implements importer.Source.
func (s *Static) Name() string { return s.PackName }

// Type implements importer.Source.
func (s *Static) Type() world.DocumentType { return s.DocType }

// Documents implements importer.Source.
func (s *Static) Documents(_ context.Context) ([]*world.Document, error) {
	out := make([]*world.Document, 0, len(s.Docs))
	for _, d := range s.Docs {
		c := d.Clone()
		c.Type = s.DocType
		out = append(out, c)
	}
	return out, nil
}
