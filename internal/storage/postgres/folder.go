package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// FolderRepository provides folder persistence operations.
type FolderRepository struct {
	db *pgxpool.Pool
}

// NewFolderRepository creates a FolderRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewFolderRepository(db *pgxpool.Pool) *FolderRepository {
	return &FolderRepository{db: db}
}

const folderColumns = `id, type, name, COALESCE(parent_id, ''), sort, sorting, color, flags`

// CreateBatch inserts every folder in one transaction.
//
// Precondition: every folder has an id assigned and a valid type.
// Postcondition: Either all folders are stored or none are.
func (r *FolderRepository) CreateBatch(ctx context.Context, folders []*world.Folder) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, f := range folders {
			flags, err := marshalJSON(f.Flags, "{}")
			if err != nil {
				return fmt.Errorf("encoding flags for folder %q: %w", f.Name, err)
			}
			batch.Queue(`
				INSERT INTO folders (id, type, name, parent_id, sort, sorting, color, flags)
				VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)`,
				f.ID, string(f.Type), f.Name, f.Parent, f.Sort, sortingOrDefault(f.Sorting), f.Color, flags,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting folders: %w", err)
		}
		return nil
	})
}

// Update replaces the stored folder with the same id.
//
// Postcondition: Returns world.ErrNotFound if no row matched.
func (r *FolderRepository) Update(ctx context.Context, f *world.Folder) error {
	flags, err := marshalJSON(f.Flags, "{}")
	if err != nil {
		return fmt.Errorf("encoding flags for folder %q: %w", f.Name, err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE folders
		SET name = $2, parent_id = NULLIF($3, ''), sort = $4, sorting = $5, color = $6, flags = $7
		WHERE id = $1`,
		f.ID, f.Name, f.Parent, f.Sort, sortingOrDefault(f.Sorting), f.Color, flags,
	)
	if err != nil {
		return fmt.Errorf("updating folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("folder %q: %w", f.ID, world.ErrNotFound)
	}
	return nil
}

// FindByName returns the earliest-created folder of type t named name.
//
// Postcondition: Returns the Folder or world.ErrNotFound.
func (r *FolderRepository) FindByName(ctx context.Context, t world.DocumentType, name string) (*world.Folder, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+folderColumns+`
		FROM folders WHERE type = $1 AND name = $2
		ORDER BY seq ASC LIMIT 1`,
		string(t), name,
	)
	f, err := scanFolder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s folder %q: %w", t, name, world.ErrNotFound)
		}
		return nil, fmt.Errorf("querying folder: %w", err)
	}
	return f, nil
}

// List returns every folder in creation order.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *FolderRepository) List(ctx context.Context) ([]*world.Folder, error) {
	rows, err := r.db.Query(ctx, `SELECT `+folderColumns+` FROM folders ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	defer rows.Close()

	folders := make([]*world.Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning folder row: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func scanFolder(row pgx.Row) (*world.Folder, error) {
	var (
		f     world.Folder
		typ   string
		flags []byte
	)
	if err := row.Scan(&f.ID, &typ, &f.Name, &f.Parent, &f.Sort, &f.Sorting, &f.Color, &flags); err != nil {
		return nil, err
	}
	f.Type = world.DocumentType(typ)
	if err := unmarshalJSON(flags, &f.Flags); err != nil {
		return nil, fmt.Errorf("decoding flags for folder %q: %w", f.Name, err)
	}
	return &f, nil
}

func sortingOrDefault(s string) string {
	if s == "" {
		return world.SortAlphabetical
	}
	return s
}

// marshalJSON encodes v, substituting empty for a nil value.
func marshalJSON(v any, empty string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return []byte(empty), nil
	}
	return data, nil
}

// unmarshalJSON decodes data into v; empty data leaves v untouched.
func unmarshalJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
