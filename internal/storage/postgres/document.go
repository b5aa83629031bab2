package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// DocumentRepository provides journal, actor, item and scene persistence.
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a DocumentRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, type, name, COALESCE(folder_id, ''), sort, flags, data, journal_id, thumb, notes, tokens`

// encodedDocument holds the JSONB columns of a document.
type encodedDocument struct {
	flags, data, notes, tokens []byte
}

func encodeDocument(d *world.Document) (encodedDocument, error) {
	var (
		e   encodedDocument
		err error
	)
	if e.flags, err = marshalJSON(d.Flags, "{}"); err != nil {
		return e, fmt.Errorf("encoding flags: %w", err)
	}
	if e.data, err = marshalJSON(d.Data, "{}"); err != nil {
		return e, fmt.Errorf("encoding data: %w", err)
	}
	if e.notes, err = marshalJSON(d.Notes, "[]"); err != nil {
		return e, fmt.Errorf("encoding notes: %w", err)
	}
	if e.tokens, err = marshalJSON(d.Tokens, "[]"); err != nil {
		return e, fmt.Errorf("encoding tokens: %w", err)
	}
	return e, nil
}

// CreateBatch inserts every document in one transaction.
//
// Precondition: every document has an id assigned and type t.
// Postcondition: Either all documents are stored or none are.
func (r *DocumentRepository) CreateBatch(ctx context.Context, t world.DocumentType, docs []*world.Document) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, d := range docs {
			e, err := encodeDocument(d)
			if err != nil {
				return fmt.Errorf("%s %q: %w", t, d.Name, err)
			}
			batch.Queue(`
				INSERT INTO documents
					(id, type, name, folder_id, sort, flags, data, journal_id, thumb, notes, tokens)
				VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11)`,
				d.ID, string(t), d.Name, d.Folder, d.Sort, e.flags, e.data, d.Journal, d.Thumb, e.notes, e.tokens,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting %s: %w", t, err)
		}
		return nil
	})
}

// Update replaces the stored document with the same id.
//
// Postcondition: Returns world.ErrNotFound if no row matched.
func (r *DocumentRepository) Update(ctx context.Context, d *world.Document) error {
	e, err := encodeDocument(d)
	if err != nil {
		return fmt.Errorf("%s %q: %w", d.Type, d.Name, err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET name = $2, folder_id = NULLIF($3, ''), sort = $4, flags = $5, data = $6,
		    journal_id = $7, thumb = $8, notes = $9, tokens = $10, updated_at = NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Folder, d.Sort, e.flags, e.data, d.Journal, d.Thumb, e.notes, e.tokens,
	)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %q: %w", d.Type, d.ID, world.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a document by its id.
//
// Postcondition: Returns the Document or world.ErrNotFound.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*world.Document, error) {
	row := r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document %q: %w", id, world.ErrNotFound)
		}
		return nil, fmt.Errorf("querying document: %w", err)
	}
	return d, nil
}

// FindByName returns the earliest-created document of type t named name.
//
// Postcondition: Returns the Document or world.ErrNotFound.
func (r *DocumentRepository) FindByName(ctx context.Context, t world.DocumentType, name string) (*world.Document, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents WHERE type = $1 AND name = $2
		ORDER BY seq ASC LIMIT 1`,
		string(t), name,
	)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s %q: %w", t, name, world.ErrNotFound)
		}
		return nil, fmt.Errorf("querying document: %w", err)
	}
	return d, nil
}

// ListByType returns every document of type t in creation order.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *DocumentRepository) ListByType(ctx context.Context, t world.DocumentType) ([]*world.Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents WHERE type = $1 ORDER BY seq ASC`,
		string(t),
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t, err)
	}
	defer rows.Close()

	docs := make([]*world.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func scanDocument(row pgx.Row) (*world.Document, error) {
	var (
		d   world.Document
		typ string
		e   encodedDocument
	)
	if err := row.Scan(&d.ID, &typ, &d.Name, &d.Folder, &d.Sort,
		&e.flags, &e.data, &d.Journal, &d.Thumb, &e.notes, &e.tokens); err != nil {
		return nil, err
	}
	d.Type = world.DocumentType(typ)
	if err := unmarshalJSON(e.flags, &d.Flags); err != nil {
		return nil, fmt.Errorf("decoding flags for %q: %w", d.Name, err)
	}
	if err := unmarshalJSON(e.data, &d.Data); err != nil {
		return nil, fmt.Errorf("decoding data for %q: %w", d.Name, err)
	}
	if err := unmarshalJSON(e.notes, &d.Notes); err != nil {
		return nil, fmt.Errorf("decoding notes for %q: %w", d.Name, err)
	}
	if err := unmarshalJSON(e.tokens, &d.Tokens); err != nil {
		return nil, fmt.Errorf("decoding tokens for %q: %w", d.Name, err)
	}
	if len(d.Notes) == 0 {
		d.Notes = nil
	}
	if len(d.Tokens) == 0 {
		d.Tokens = nil
	}
	return &d, nil
}
