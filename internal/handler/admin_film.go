package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/filmlog/filmlog/internal/auth"
	"github.com/filmlog/filmlog/internal/repository"
)

// AdminFilmHandler exposes the catalog mutations.  The router already gates
// these routes behind the filmadmin role, but every handler still asks the
// guard explicitly so the policy lives in one place.
type AdminFilmHandler struct {
	Films *repository.FilmRepo
}

func NewAdminFilmHandler(films *repository.FilmRepo) *AdminFilmHandler {
	return &AdminFilmHandler{Films: films}
}

type filmCreateReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Year        int      `json:"year"`
	Genres      []string `json:"genres"`
}

// filmUpdateReq uses pointers so an absent field is distinguishable from an
// explicit zero value.
type filmUpdateReq struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Year        *int     `json:"year"`
	Genres      []string `json:"genres"`
}

// Create handles POST /v1/films.
func (h *AdminFilmHandler) Create(c echo.Context) error {
	p := getPrincipal(c)
	if !auth.Authorize(p, auth.ActionCreate, auth.Film()) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req filmCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	attrs := repository.FilmAttrs{
		Name:        &req.Name,
		Description: &req.Description,
		Year:        &req.Year,
		Genres:      req.Genres,
	}
	if attrs.Genres == nil {
		attrs.Genres = []string{}
	}
	film, err := h.Films.Create(ctx, attrs)
	if err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown genre"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create film failed"})
	}
	return c.JSON(http.StatusCreated, film)
}

// Update handles PATCH /v1/films/:id with partial attributes.
func (h *AdminFilmHandler) Update(c echo.Context) error {
	p := getPrincipal(c)
	if !auth.Authorize(p, auth.ActionUpdate, auth.Film()) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}

	var req filmUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
		}
		req.Name = &trimmed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	film, err := h.Films.Update(ctx, id, repository.FilmAttrs{
		Name:        req.Name,
		Description: req.Description,
		Year:        req.Year,
		Genres:      req.Genres,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrFilmNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		case errors.Is(err, repository.ErrGenreNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown genre"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update film failed"})
		}
	}
	return c.JSON(http.StatusOK, film)
}

// Delete handles DELETE /v1/films/:id.  Reviews and genre links go with the
// film in the same transaction.
func (h *AdminFilmHandler) Delete(c echo.Context) error {
	p := getPrincipal(c)
	if !auth.Authorize(p, auth.ActionDelete, auth.Film()) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Films.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrFilmNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete film failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
