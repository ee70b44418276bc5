package repository

import (
	"context"      // context carries deadlines and cancellation into DB calls
	"database/sql" // sql provides generic database operations
	"errors"       // errors.Is comparisons against sentinel values
	"strings"      // strings detects MySQL duplicate-key errors

	"github.com/filmlog/filmlog/internal/model"
)

// GenreRepo encapsulates all database queries for genres.  The registry
// trusts that every caller consulted the authorization guard before calling
// a mutating method (capability-style); it enforces data integrity, not
// policy.  The one exception is referential integrity: deletes of genres
// still attached to films are refused with ErrGenreReferenced.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo constructs a GenreRepo with the provided DB handle.
func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{db: db} }

// Create inserts a new genre and populates the generated ID.  A name
// collision with an existing genre yields ErrDuplicateName; the genres.name
// unique key is what actually enforces it, so the check-and-insert is a
// single atomic statement.
func (r *GenreRepo) Create(ctx context.Context, name string) (*model.Genre, error) {
	const q = "INSERT INTO genres (name) VALUES (?)"
	res, err := r.db.ExecContext(ctx, q, name)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Genre{ID: uint64(id), Name: name}, nil
}

// Rename changes a genre's name.  Because films reference genres through
// the film_genres join table, the new name is immediately visible on every
// film that carries the genre.  Returns ErrGenreNotFound when no row was
// updated and ErrDuplicateName on a unique-key collision.
func (r *GenreRepo) Rename(ctx context.Context, id uint64, name string) (*model.Genre, error) {
	const q = "UPDATE genres SET name = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, name, id)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the id does not exist or the name is unchanged; probe
		// existence to tell the two apart.
		var exists uint64
		if err := r.db.QueryRowContext(ctx, "SELECT id FROM genres WHERE id = ?", id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrGenreNotFound
			}
			return nil, err
		}
	}
	return &model.Genre{ID: id, Name: name}, nil
}

// Delete removes a genre by id.  When one or more films still reference the
// genre the delete is rejected with ErrGenreReferenced; cascading would
// silently rewrite film genre sets, which this registry refuses to do.
func (r *GenreRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var refs int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM film_genres WHERE genre_id = ?", id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrGenreReferenced
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM genres WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGenreNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a genre by id, returning ErrGenreNotFound when absent.
func (r *GenreRepo) GetByID(ctx context.Context, id uint64) (*model.Genre, error) {
	const q = "SELECT id, name FROM genres WHERE id = ?"
	var g model.Genre
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&g.ID, &g.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return &g, nil
}

// List returns all genres ordered by name.
func (r *GenreRepo) List(ctx context.Context) ([]*model.Genre, error) {
	const q = "SELECT id, name FROM genres ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Genre, 0)
	for rows.Next() {
		g := new(model.Genre)
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveNamesTx maps genre names to ids inside a transaction, preserving
// input order.  An unknown name yields ErrGenreNotFound so film writes fail
// before touching the join table.
func (r *GenreRepo) ResolveNamesTx(ctx context.Context, tx *sql.Tx, names []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(names))
	for _, name := range names {
		var id uint64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM genres WHERE name = ?", name).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrGenreNotFound
			}
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// isDuplicateKey reports whether err is a MySQL 1062 duplicate-entry error.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// isForeignKeyViolation reports whether err is a MySQL 1452 error (a child
// row referencing a missing parent).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1452")
}
