package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/filmlog/filmlog/internal/model"
	"github.com/filmlog/filmlog/internal/rating"
	"github.com/filmlog/filmlog/internal/repository"
)

// BrowseHandler serves the public, read-only catalog surface.  Ratings are
// folded from the live review scores on every request; nothing here reads a
// stored aggregate.
type BrowseHandler struct {
	Films   *repository.FilmRepo
	Genres  *repository.GenreRepo
	Reviews *repository.ReviewRepo
}

func NewBrowseHandler(films *repository.FilmRepo, genres *repository.GenreRepo, reviews *repository.ReviewRepo) *BrowseHandler {
	return &BrowseHandler{Films: films, Genres: genres, Reviews: reviews}
}

// GetFilm handles GET /v1/films/:id.
func (h *BrowseHandler) GetFilm(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	film, err := h.Films.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFilmNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load film failed"})
	}

	scores, err := h.Reviews.ScoresByFilm(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load film failed"})
	}
	film.AverageRating = rating.Average(scores)
	film.ReviewCount = len(scores)

	return c.JSON(http.StatusOK, film)
}

// ListFilms handles GET /v1/films.
func (h *BrowseHandler) ListFilms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	films, err := h.Films.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list films failed"})
	}
	if err := h.foldRatings(ctx, films); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list films failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"films": films, "count": len(films)})
}

// ListGenres handles GET /v1/genres.  This is the one route the router puts
// behind the response cache; genres carry no rating data.
func (h *BrowseHandler) ListGenres(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genres, err := h.Genres.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list genres failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"genres": genres, "count": len(genres)})
}

// SearchFilms handles GET /v1/search/films with optional name, genre and
// year filters combined conjunctively, plus page/page_size pagination.
func (h *BrowseHandler) SearchFilms(c echo.Context) error {
	q := repository.FilmSearchQuery{
		Name:  strings.TrimSpace(c.QueryParam("name")),
		Genre: strings.TrimSpace(c.QueryParam("genre")),
	}
	if raw := c.QueryParam("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
		}
		q.Year = year
	}
	q.Page = parsePositive(c.QueryParam("page"), 1)
	q.PageSize = parsePositive(c.QueryParam("page_size"), 20)
	if q.PageSize > 100 {
		q.PageSize = 100
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	films, total, err := h.Films.Search(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	if err := h.foldRatings(ctx, films); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"films":     films,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}

// foldRatings attaches the recomputed aggregate to each film in one batch
// query instead of a per-film round trip.
func (h *BrowseHandler) foldRatings(ctx context.Context, films []*model.Film) error {
	if len(films) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(films))
	for _, f := range films {
		ids = append(ids, f.ID)
	}
	scoresByFilm, err := h.Reviews.ScoresForFilms(ctx, ids)
	if err != nil {
		return err
	}
	for _, f := range films {
		scores := scoresByFilm[f.ID]
		f.AverageRating = rating.Average(scores)
		f.ReviewCount = len(scores)
	}
	return nil
}

func parsePositive(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
