package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/filmlog/filmlog/internal/auth"
	"github.com/filmlog/filmlog/internal/model"
)

// ReviewRepo owns the review ledger: it is the sole writer of the rows the
// aggregate-rating computation reads.  The ledger enforces two invariants
// regardless of what the caller already checked: scores stay in [0,10]
// (validated before any write) and at most one review exists per
// (film_id, user_id) pair, guaranteed by the table's unique key.  Update
// and delete re-consult the authorization guard with the loaded row's
// owner, so a caller that skipped its own check still cannot mutate a
// foreign review.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// DB exposes the underlying handle for cross-repository transactions.
func (r *ReviewRepo) DB() *sql.DB { return r.db }

// Submit upserts the principal's review of a film.  When no review exists
// for (filmID, userID) a row is created; when one does, the submission is
// converted into an update of that row.  The two cases are reported via the
// created return value so the transport layer can answer 201 or 200.
//
// The check-for-existing and the write are a single INSERT ... ON DUPLICATE
// KEY UPDATE against the unique (film_id, user_id) key, so two concurrent
// submissions from the same user can never produce two rows: the loser of
// the race is converted by the storage engine into an update of the
// winner's row.  LAST_INSERT_ID(id) makes the existing row's id observable
// on the duplicate path.
func (r *ReviewRepo) Submit(ctx context.Context, filmID, userID uint64, text string, score int, recommend bool) (*model.Review, bool, error) {
	if err := model.ValidateScore(score); err != nil {
		return nil, false, err
	}
	// Reject unknown films up front for the friendly error; the FK on
	// reviews.film_id below is what makes the answer authoritative.
	var exists uint64
	if err := r.db.QueryRowContext(ctx, "SELECT id FROM films WHERE id = ?", filmID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrFilmNotFound
		}
		return nil, false, err
	}

	const q = `INSERT INTO reviews (film_id, user_id, body, score, recommend)
	           VALUES (?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	               id = LAST_INSERT_ID(id),
	               body = VALUES(body),
	               score = VALUES(score),
	               recommend = VALUES(recommend)`
	res, err := r.db.ExecContext(ctx, q, filmID, userID, text, score, recommend)
	if err != nil {
		// The film (or user) vanished between the probe and the insert;
		// the foreign key turns the would-be orphan row into a rejection.
		if isForeignKeyViolation(err) {
			return nil, false, ErrFilmNotFound
		}
		return nil, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	// MySQL reports 1 affected row for an insert, 2 for a duplicate-key
	// update, 0 when the update changed nothing.  Anything but 1 means the
	// submission landed on an existing row.
	affected, _ := res.RowsAffected()
	created := affected == 1

	rev, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return nil, false, err
	}
	return rev, created, nil
}

// Update applies a partial change to a review on behalf of the acting
// principal.  Nil fields stay unchanged.  The guard is consulted with the
// stored row's owner; a non-owner non-admin gets ErrForbidden.  Score
// validation happens before the write so no partial mutation can occur.
func (r *ReviewRepo) Update(ctx context.Context, reviewID uint64, acting auth.Principal, text *string, score *int, recommend *bool) (*model.Review, error) {
	rev, err := r.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !auth.Authorize(acting, auth.ActionUpdate, auth.Review(rev.UserID)) {
		return nil, ErrForbidden
	}
	if score != nil {
		if err := model.ValidateScore(*score); err != nil {
			return nil, err
		}
	}

	set := []string{}
	args := []any{}
	if text != nil {
		set = append(set, "body = ?")
		args = append(args, *text)
	}
	if score != nil {
		set = append(set, "score = ?")
		args = append(args, *score)
	}
	if recommend != nil {
		set = append(set, "recommend = ?")
		args = append(args, *recommend)
	}
	if len(set) == 0 {
		return rev, nil
	}
	q := "UPDATE reviews SET " + strings.Join(set, ", ") + " WHERE id = ?"
	args = append(args, reviewID)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, reviewID)
}

// Delete removes a review on behalf of the acting principal, applying the
// same owner-or-admin rule as Update.
func (r *ReviewRepo) Delete(ctx context.Context, reviewID uint64, acting auth.Principal) error {
	rev, err := r.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !auth.Authorize(acting, auth.ActionDelete, auth.Review(rev.UserID)) {
		return ErrForbidden
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", reviewID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// GetByID fetches a review by id, returning ErrReviewNotFound when absent.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
	const q = "SELECT id, film_id, user_id, body, score, recommend FROM reviews WHERE id = ?"
	var rev model.Review
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rev.ID, &rev.FilmID, &rev.UserID, &rev.Text, &rev.Score, &rev.Recommend,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// ReviewWithAuthor is a review joined with the author's display name.  The
// join is purely a read-side convenience for presentation; it plays no part
// in the ledger's invariants.
type ReviewWithAuthor struct {
	model.Review
	Author string `json:"author"`
}

// ListByFilm returns all reviews for a film, newest first, each carrying
// the author's display name.  An empty slice (not nil) is returned when
// the film has no reviews.
func (r *ReviewRepo) ListByFilm(ctx context.Context, filmID uint64) ([]ReviewWithAuthor, error) {
	const q = `SELECT r.id, r.film_id, r.user_id, r.body, r.score, r.recommend, u.name
	           FROM reviews r
	           JOIN users u ON u.id = r.user_id
	           WHERE r.film_id = ?
	           ORDER BY r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ReviewWithAuthor, 0)
	for rows.Next() {
		var rv ReviewWithAuthor
		if err := rows.Scan(&rv.ID, &rv.FilmID, &rv.UserID, &rv.Text, &rv.Score, &rv.Recommend, &rv.Author); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ScoresByFilm returns the current scores of all reviews for a film.  This
// is the read the rating aggregator folds over; it is re-executed on every
// aggregate computation so edits in place are always reflected.
func (r *ReviewRepo) ScoresByFilm(ctx context.Context, filmID uint64) ([]int, error) {
	const q = "SELECT score FROM reviews WHERE film_id = ?"
	rows, err := r.db.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]int, 0)
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

// ScoresForFilms returns current scores grouped by film id for the given
// set of films in a single query.  Films without reviews are simply absent
// from the map.
func (r *ReviewRepo) ScoresForFilms(ctx context.Context, filmIDs []uint64) (map[uint64][]int, error) {
	out := make(map[uint64][]int, len(filmIDs))
	if len(filmIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, 0, len(filmIDs))
	args := make([]any, 0, len(filmIDs))
	for _, id := range filmIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT film_id, score FROM reviews
	      WHERE film_id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var fid uint64
		var s int
		if err := rows.Scan(&fid, &s); err != nil {
			return nil, err
		}
		out[fid] = append(out[fid], s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
