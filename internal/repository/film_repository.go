package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/filmlog/filmlog/internal/model"
)

// FilmRepo encapsulates database queries for films and their genre
// associations.  Mutations assume the caller already passed the
// authorization guard.  The derived AverageRating/ReviewCount fields are
// never read or written here; the handler layer folds current review
// scores into each returned film so the value is always fresh.
type FilmRepo struct {
	db     *sql.DB
	genres *GenreRepo
}

// NewFilmRepo constructs a FilmRepo.  The genre repository is used to
// resolve genre names when writing associations.
func NewFilmRepo(db *sql.DB, genres *GenreRepo) *FilmRepo {
	return &FilmRepo{db: db, genres: genres}
}

// DB exposes the underlying handle so handlers can open transactions that
// span repositories.
func (r *FilmRepo) DB() *sql.DB { return r.db }

// FilmAttrs carries the attributes for a film create or partial update.
// Nil pointers on update mean "leave unchanged"; a non-nil Genres slice
// replaces the film's whole genre set.
type FilmAttrs struct {
	Name        *string
	Description *string
	Year        *int
	Genres      []string
}

// Create inserts a film and its genre associations in one transaction.
// Unknown genre names abort the write with ErrGenreNotFound before any
// association row is created.
func (r *FilmRepo) Create(ctx context.Context, attrs FilmAttrs) (*model.Film, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	name, desc, year := "", "", 0
	if attrs.Name != nil {
		name = *attrs.Name
	}
	if attrs.Description != nil {
		desc = *attrs.Description
	}
	if attrs.Year != nil {
		year = *attrs.Year
	}

	const q = "INSERT INTO films (name, description, year) VALUES (?, ?, ?)"
	res, err := tx.ExecContext(ctx, q, name, desc, year)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	filmID := uint64(id)

	if err := r.replaceGenresTx(ctx, tx, filmID, attrs.Genres); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return r.GetByID(ctx, filmID)
}

// Update applies a partial attribute set to an existing film.  Unspecified
// fields keep their current values.  A non-nil Genres slice replaces the
// association set wholesale; passing an empty non-nil slice clears it.
func (r *FilmRepo) Update(ctx context.Context, id uint64, attrs FilmAttrs) (*model.Film, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Verify existence first so a partial update of a missing film reports
	// NotFound rather than silently affecting zero rows.
	var exists uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM films WHERE id = ?", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}

	set := []string{}
	args := []any{}
	if attrs.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *attrs.Name)
	}
	if attrs.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *attrs.Description)
	}
	if attrs.Year != nil {
		set = append(set, "year = ?")
		args = append(args, *attrs.Year)
	}
	if len(set) > 0 {
		q := "UPDATE films SET " + strings.Join(set, ", ") + " WHERE id = ?"
		args = append(args, id)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	if attrs.Genres != nil {
		if err := r.replaceGenresTx(ctx, tx, id, attrs.Genres); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return r.GetByID(ctx, id)
}

// Delete removes a film, its genre associations and all of its reviews in a
// single transaction.  Reviews are foreign-keyed to films and must never
// outlive them, so the cascade happens here rather than relying on the
// caller to clean up.  Returns ErrFilmNotFound when the id does not exist.
func (r *FilmRepo) Delete(ctx context.Context, id uint64) error {
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

	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE film_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM film_genres WHERE film_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM films WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFilmNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a single film with its genre names.  The rating fields
// are left at zero for the handler layer to fill in.
func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (*model.Film, error) {
	const q = "SELECT id, name, description, year FROM films WHERE id = ?"
	var f model.Film
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&f.ID, &f.Name, &f.Description, &f.Year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}
	genres, err := r.genresForFilms(ctx, []uint64{id})
	if err != nil {
		return nil, err
	}
	f.Genres = genres[id]
	if f.Genres == nil {
		f.Genres = []string{}
	}
	return &f, nil
}

// List returns all films ordered by id, each populated with its genre
// names.  Rating fields are filled by the handler layer.
func (r *FilmRepo) List(ctx context.Context) ([]*model.Film, error) {
	const q = "SELECT id, name, description, year FROM films ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Film, 0)
	ids := make([]uint64, 0)
	for rows.Next() {
		f := new(model.Film)
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.Year); err != nil {
			return nil, err
		}
		f.Genres = []string{}
		out = append(out, f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachGenres(ctx, out, ids); err != nil {
		return nil, err
	}
	return out, nil
}

// replaceGenresTx rewrites the film_genres rows for a film inside the given
// transaction.  Names are resolved to ids first; an unknown name fails the
// whole write.
func (r *FilmRepo) replaceGenresTx(ctx context.Context, tx *sql.Tx, filmID uint64, names []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM film_genres WHERE film_id = ?", filmID); err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	ids, err := r.genres.ResolveNamesTx(ctx, tx, names)
	if err != nil {
		return err
	}
	query := "INSERT INTO film_genres (film_id, genre_id) VALUES "
	args := make([]any, 0, len(ids)*2)
	for i, gid := range ids {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, filmID, gid)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// genresForFilms loads genre names for the given film ids in one query.
func (r *FilmRepo) genresForFilms(ctx context.Context, filmIDs []uint64) (map[uint64][]string, error) {
	out := make(map[uint64][]string, len(filmIDs))
	if len(filmIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, 0, len(filmIDs))
	args := make([]any, 0, len(filmIDs))
	for _, id := range filmIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT fg.film_id, g.name
	      FROM film_genres fg
	      JOIN genres g ON g.id = fg.genre_id
	      WHERE fg.film_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY fg.film_id, g.name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var fid uint64
		var name string
		if err := rows.Scan(&fid, &name); err != nil {
			return nil, err
		}
		out[fid] = append(out[fid], name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// attachGenres populates the Genres field of every film in the slice.
func (r *FilmRepo) attachGenres(ctx context.Context, films []*model.Film, ids []uint64) error {
	genres, err := r.genresForFilms(ctx, ids)
	if err != nil {
		return err
	}
	for _, f := range films {
		if gs, ok := genres[f.ID]; ok {
			f.Genres = gs
		}
	}
	return nil
}
