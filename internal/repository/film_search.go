package repository

import (
	"context"
	"strings"

	"github.com/filmlog/filmlog/internal/model"
)

// FilmSearchQuery defines filters & pagination for searching films.  Every
// supplied filter narrows the result set (conjunction); zero values are
// no-ops.  Name matches as a case-insensitive substring, Genre as exact
// membership in the film's genre set, Year as exact equality.
type FilmSearchQuery struct {
	Name     string
	Genre    string
	Year     int
	Page     int
	PageSize int
}

// Search runs the filtered, paginated film query and returns the page of
// films plus the total match count.  Genre names are attached; rating
// fields are filled by the handler layer from the review ledger.
func (r *FilmRepo) Search(ctx context.Context, q FilmSearchQuery) ([]*model.Film, int64, error) {
	where := []string{}
	args := []any{}

	if q.Name != "" {
		where = append(where, "LOWER(f.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}
	if q.Genre != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM film_genres fg
			JOIN genres g ON g.id = fg.genre_id
			WHERE fg.film_id = f.id AND g.name = ?)`)
		args = append(args, q.Genre)
	}
	if q.Year != 0 {
		where = append(where, "f.year = ?")
		args = append(args, q.Year)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM films f WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT f.id, f.name, f.description, f.year
		FROM films f
		WHERE ` + cond + `
		ORDER BY f.id ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*model.Film, 0, limit)
	ids := make([]uint64, 0, limit)
	for rows.Next() {
		f := new(model.Film)
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.Year); err != nil {
			return nil, 0, err
		}
		f.Genres = []string{}
		out = append(out, f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachGenres(ctx, out, ids); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
