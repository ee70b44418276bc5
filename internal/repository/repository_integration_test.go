package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/filmlog/filmlog/internal/auth"
)

// These tests run against a real MySQL instance and are skipped unless
// TEST_DATABASE_DSN is set, e.g.:
//
//	TEST_DATABASE_DSN='root:@tcp(127.0.0.1:3306)/filmlog_test?parseTime=true' go test ./internal/repository/
//
// The schema is created on first use and every table is truncated before
// each test, so the target database must be disposable.

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	)`,
	// genres.name uses a binary collation: the unique key and every
	// name = ? comparison are byte-exact, so names differing only in
	// case are distinct genres.
	`CREATE TABLE IF NOT EXISTS genres (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_genres_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS films (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		year INT NOT NULL,
		PRIMARY KEY (id)
	)`,
	`CREATE TABLE IF NOT EXISTS film_genres (
		film_id BIGINT UNSIGNED NOT NULL,
		genre_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (film_id, genre_id),
		CONSTRAINT fk_film_genres_film FOREIGN KEY (film_id) REFERENCES films (id),
		CONSTRAINT fk_film_genres_genre FOREIGN KEY (genre_id) REFERENCES genres (id)
	)`,
	// The foreign keys are the backstop for the race between a review
	// submission and a concurrent film delete: a review row can never
	// outlive or precede its film.
	`CREATE TABLE IF NOT EXISTS reviews (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		film_id BIGINT UNSIGNED NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		body TEXT NOT NULL,
		score INT NOT NULL,
		recommend TINYINT(1) NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		UNIQUE KEY uq_reviews_film_user (film_id, user_id),
		CONSTRAINT fk_reviews_film FOREIGN KEY (film_id) REFERENCES films (id),
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping database tests")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	for _, q := range schema {
		_, err := db.Exec(q)
		require.NoError(t, err)
	}
	// TRUNCATE refuses parent tables with FK references, even empty ones.
	_, err = db.Exec("SET FOREIGN_KEY_CHECKS = 0")
	require.NoError(t, err)
	for _, table := range []string{"reviews", "film_genres", "films", "genres", "users"} {
		_, err := db.Exec("TRUNCATE TABLE " + table)
		require.NoError(t, err)
	}
	_, err = db.Exec("SET FOREIGN_KEY_CHECKS = 1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, users *UserRepo, name, role string) uint64 {
	t.Helper()
	email := fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano())
	id, err := users.Create(context.Background(), name, email, "secret", role, 4)
	require.NoError(t, err)
	return id
}

func seedFilm(t *testing.T, films *FilmRepo, name string, genres []string) uint64 {
	t.Helper()
	desc, year := "test film", 2020
	f, err := films.Create(context.Background(), FilmAttrs{
		Name: &name, Description: &desc, Year: &year, Genres: genres,
	})
	require.NoError(t, err)
	return f.ID
}

func TestReviewSubmitUpserts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	genres := NewGenreRepo(db)
	films := NewFilmRepo(db, genres)
	reviews := NewReviewRepo(db)

	uid := seedUser(t, users, "alice", auth.RoleUser)
	fid := seedFilm(t, films, "Solaris", nil)

	first, created, err := reviews.Submit(ctx, fid, uid, "slow but great", 8, true)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := reviews.Submit(ctx, fid, uid, "on rewatch: masterpiece", 10, true)
	require.NoError(t, err)
	require.False(t, created, "second submission must update, not create")
	require.Equal(t, first.ID, second.ID, "repeat submission must land on the same row")
	require.Equal(t, 10, second.Score)
	require.Equal(t, "on rewatch: masterpiece", second.Text)

	var count int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM reviews WHERE film_id = ? AND user_id = ?", fid, uid).Scan(&count))
	require.Equal(t, 1, count)

	scores, err := reviews.ScoresByFilm(ctx, fid)
	require.NoError(t, err)
	require.Equal(t, []int{10}, scores, "aggregate input must reflect the replacement")
}

func TestReviewSubmitConcurrentSameUser(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	genres := NewGenreRepo(db)
	films := NewFilmRepo(db, genres)
	reviews := NewReviewRepo(db)

	uid := seedUser(t, users, "bob", auth.RoleUser)
	fid := seedFilm(t, films, "Stalker", nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, _, err := reviews.Submit(ctx, fid, uid, "racing", score, false)
			errs <- err
		}(i % 11)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var count int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM reviews WHERE film_id = ? AND user_id = ?", fid, uid).Scan(&count))
	require.Equal(t, 1, count, "concurrent submissions must collapse to one row")
}

func TestReviewOwnershipEnforced(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	genres := NewGenreRepo(db)
	films := NewFilmRepo(db, genres)
	reviews := NewReviewRepo(db)

	owner := seedUser(t, users, "carol", auth.RoleUser)
	other := seedUser(t, users, "dave", auth.RoleUser)
	admin := seedUser(t, users, "erin", auth.RoleFilmAdmin)
	fid := seedFilm(t, films, "Mirror", nil)

	rev, _, err := reviews.Submit(ctx, fid, owner, "dense", 7, true)
	require.NoError(t, err)

	newScore := 9
	_, err = reviews.Update(ctx, rev.ID, auth.Principal{ID: other, Role: auth.RoleUser}, nil, &newScore, nil)
	require.ErrorIs(t, err, ErrForbidden)

	err = reviews.Delete(ctx, rev.ID, auth.Principal{ID: other, Role: auth.RoleUser})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := reviews.Update(ctx, rev.ID, auth.Principal{ID: owner, Role: auth.RoleUser}, nil, &newScore, nil)
	require.NoError(t, err)
	require.Equal(t, 9, updated.Score)

	require.NoError(t, reviews.Delete(ctx, rev.ID, auth.Principal{ID: admin, Role: auth.RoleFilmAdmin}))
	_, err = reviews.GetByID(ctx, rev.ID)
	require.ErrorIs(t, err, ErrReviewNotFound)
}

func TestGenreNamesAreCaseSensitive(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	genres := NewGenreRepo(db)
	films := NewFilmRepo(db, genres)

	lower, err := genres.Create(ctx, "drama")
	require.NoError(t, err)
	upper, err := genres.Create(ctx, "Drama")
	require.NoError(t, err, "names differing only in case are distinct genres")
	require.NotEqual(t, lower.ID, upper.ID)

	// Only the byte-identical name collides.
	_, err = genres.Create(ctx, "drama")
	require.ErrorIs(t, err, ErrDuplicateName)

	all, err := genres.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Membership filters are byte-exact as well.
	fid := seedFilm(t, films, "Ordet", []string{"drama"})
	got, total, err := films.Search(ctx, FilmSearchQuery{Genre: "drama", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, fid, got[0].ID)

	_, total, err = films.Search(ctx, FilmSearchQuery{Genre: "Drama", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(0), total)
}

func TestReviewCannotReferenceMissingFilm(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	genres := NewGenreRepo(db)
	films := NewFilmRepo(db, genres)
	reviews := NewReviewRepo(db)

	uid := seedUser(t, users, "grace", auth.RoleUser)
	fid := seedFilm(t, films, "Playtime", nil)
	require.NoError(t, films.Delete(ctx, fid))

	_, _, err := reviews.Submit(ctx, fid, uid, "too late", 6, false)
	require.ErrorIs(t, err, ErrFilmNotFound)

	// The writer that loses the race skips the existence probe entirely;
	// the foreign key must still refuse the orphan row.
	_, err = db.Exec(
		"INSERT INTO reviews (film_id, user_id, body, score, recommend) VALUES (?, ?, ?, ?, ?)",
		fid, uid, "orphan", 6, false)
	require.Error(t, err)
	require.True(t, isForeignKeyViolation(err), "insert for a deleted film must fail the FK, got: %v", err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM reviews WHERE film_id = ?", fid).Scan(&count))
	require.Equal(t, 0, count)
}

func TestFilmDeleteCascadesReviews(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	genres := NewGenreRepo(db)
	films := NewFilmRepo(db, genres)
	reviews := NewReviewRepo(db)

	_, err := genres.Create(ctx, "sci-fi")
	require.NoError(t, err)
	uid := seedUser(t, users, "frank", auth.RoleUser)
	fid := seedFilm(t, films, "Ikarie XB-1", []string{"sci-fi"})

	_, _, err = reviews.Submit(ctx, fid, uid, "underrated", 9, true)
	require.NoError(t, err)

	require.NoError(t, films.Delete(ctx, fid))

	_, err = films.GetByID(ctx, fid)
	require.ErrorIs(t, err, ErrFilmNotFound)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM reviews WHERE film_id = ?", fid).Scan(&count))
	require.Equal(t, 0, count, "reviews must not outlive their film")
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM film_genres WHERE film_id = ?", fid).Scan(&count))
	require.Equal(t, 0, count)
}

func TestGenreDeleteBlockedWhileReferenced(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	genres := NewGenreRepo(db)
	films := NewFilmRepo(db, genres)

	g, err := genres.Create(ctx, "drama")
	require.NoError(t, err)
	fid := seedFilm(t, films, "Ordet", []string{"drama"})

	require.ErrorIs(t, genres.Delete(ctx, g.ID), ErrGenreReferenced)

	// Unlinking the film frees the genre for deletion.
	_, err = films.Update(ctx, fid, FilmAttrs{Genres: []string{}})
	require.NoError(t, err)
	require.NoError(t, genres.Delete(ctx, g.ID))
}

func TestFilmSearchFiltersAreConjunctive(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	genres := NewGenreRepo(db)
	films := NewFilmRepo(db, genres)

	for _, name := range []string{"noir", "comedy"} {
		_, err := genres.Create(ctx, name)
		require.NoError(t, err)
	}
	mk := func(name string, year int, gs []string) {
		desc := ""
		_, err := films.Create(ctx, FilmAttrs{Name: &name, Description: &desc, Year: &year, Genres: gs})
		require.NoError(t, err)
	}
	mk("The Third Man", 1949, []string{"noir"})
	mk("The Big Sleep", 1946, []string{"noir"})
	mk("His Girl Friday", 1940, []string{"comedy"})

	got, total, err := films.Search(ctx, FilmSearchQuery{Genre: "noir", Year: 1949, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	require.Equal(t, "The Third Man", got[0].Name)

	// A name fragment alone matches case-insensitively.
	got, total, err = films.Search(ctx, FilmSearchQuery{Name: "the", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, got, 2)

	// Filters that agree on nothing return an empty page, not an error.
	got, total, err = films.Search(ctx, FilmSearchQuery{Name: "sleep", Genre: "comedy", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(0), total)
	require.Empty(t, got)
}
