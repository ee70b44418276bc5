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

// AdminGenreHandler owns the genre registry mutations.
type AdminGenreHandler struct {
	Genres *repository.GenreRepo
}

func NewAdminGenreHandler(genres *repository.GenreRepo) *AdminGenreHandler {
	return &AdminGenreHandler{Genres: genres}
}

type genreReq struct {
	Name string `json:"name"`
}

// Create handles POST /v1/genres.
func (h *AdminGenreHandler) Create(c echo.Context) error {
	p := getPrincipal(c)
	if !auth.Authorize(p, auth.ActionCreate, auth.Genre()) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req genreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genre, err := h.Genres.Create(ctx, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create genre failed"})
	}
	return c.JSON(http.StatusCreated, genre)
}

// Rename handles PATCH /v1/genres/:id.
func (h *AdminGenreHandler) Rename(c echo.Context) error {
	p := getPrincipal(c)
	if !auth.Authorize(p, auth.ActionUpdate, auth.Genre()) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid genre id"})
	}

	var req genreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genre, err := h.Genres.Rename(ctx, id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrGenreNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		case errors.Is(err, repository.ErrDuplicateName):
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rename genre failed"})
		}
	}
	return c.JSON(http.StatusOK, genre)
}

// Delete handles DELETE /v1/genres/:id.  A genre still attached to any film
// is refused with 409 rather than silently unlinked.
func (h *AdminGenreHandler) Delete(c echo.Context) error {
	p := getPrincipal(c)
	if !auth.Authorize(p, auth.ActionDelete, auth.Genre()) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid genre id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Genres.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrGenreNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		case errors.Is(err, repository.ErrGenreReferenced):
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre is referenced by films"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete genre failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
