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
	"github.com/filmlog/filmlog/internal/model"
	"github.com/filmlog/filmlog/internal/queue"
	"github.com/filmlog/filmlog/internal/rating"
	"github.com/filmlog/filmlog/internal/repository"
	queue_publisher "github.com/filmlog/filmlog/internal/service"
)

// ReviewHandler owns the review ledger endpoints.  Every mutation recomputes
// the film's aggregate from the surviving scores and fires a rating.changed
// event; publish failures are logged inside the publisher and never fail the
// request.
type ReviewHandler struct {
	Films   *repository.FilmRepo
	Reviews *repository.ReviewRepo
}

func NewReviewHandler(films *repository.FilmRepo, reviews *repository.ReviewRepo) *ReviewHandler {
	return &ReviewHandler{Films: films, Reviews: reviews}
}

type reviewSubmitReq struct {
	Text      string `json:"text"`
	Score     int    `json:"score"`
	Recommend bool   `json:"recommend"`
}

type reviewUpdateReq struct {
	Text      *string `json:"text"`
	Score     *int    `json:"score"`
	Recommend *bool   `json:"recommend"`
}

// Submit handles POST /v1/films/:id/reviews.  A user's first review of a
// film creates it (201); a repeat submission replaces the earlier one in
// place (200).  Either way at most one row per (film, user) survives.
func (h *ReviewHandler) Submit(c echo.Context) error {
	p := getPrincipal(c)
	if !p.Authenticated() {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !auth.Authorize(p, auth.ActionCreate, auth.Review(p.ID)) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	filmID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || filmID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}

	var req reviewSubmitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Text = strings.TrimSpace(req.Text)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rev, created, err := h.Reviews.Submit(ctx, filmID, p.ID, req.Text, req.Score, req.Recommend)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidScore):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "score must be between 0 and 10"})
		case errors.Is(err, repository.ErrFilmNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit review failed"})
		}
	}

	action := "updated"
	status := http.StatusOK
	if created {
		action = "created"
		status = http.StatusCreated
	}
	h.publishRatingChanged(filmID, rev.ID, p.ID, action)

	return c.JSON(status, rev)
}

// Update handles PATCH /v1/reviews/:id with partial fields.  The repository
// re-checks ownership against the stored row, so a forged id cannot touch
// another user's review.
func (h *ReviewHandler) Update(c echo.Context) error {
	p := getPrincipal(c)
	if !p.Authenticated() {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reviewID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}

	var req reviewUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rev, err := h.Reviews.Update(ctx, reviewID, p, req.Text, req.Score, req.Recommend)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReviewNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, model.ErrInvalidScore):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "score must be between 0 and 10"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update review failed"})
		}
	}

	h.publishRatingChanged(rev.FilmID, rev.ID, rev.UserID, "updated")

	return c.JSON(http.StatusOK, rev)
}

// Delete handles DELETE /v1/reviews/:id.  The film's aggregate immediately
// reflects the removal since it is recomputed on every read.
func (h *ReviewHandler) Delete(c echo.Context) error {
	p := getPrincipal(c)
	if !p.Authenticated() {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reviewID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Load first so the event still knows which film the review belonged to.
	rev, err := h.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete review failed"})
	}

	if err := h.Reviews.Delete(ctx, reviewID, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrReviewNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete review failed"})
		}
	}

	h.publishRatingChanged(rev.FilmID, rev.ID, rev.UserID, "deleted")

	return c.NoContent(http.StatusNoContent)
}

// ListByFilm handles GET /v1/films/:id/reviews (public).
func (h *ReviewHandler) ListByFilm(c echo.Context) error {
	filmID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || filmID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Films.GetByID(ctx, filmID); err != nil {
		if errors.Is(err, repository.ErrFilmNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reviews failed"})
	}

	reviews, err := h.Reviews.ListByFilm(ctx, filmID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reviews failed"})
	}

	scores := make([]int, 0, len(reviews))
	for _, r := range reviews {
		scores = append(scores, r.Score)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reviews":        reviews,
		"review_count":   len(reviews),
		"average_rating": rating.Average(scores),
	})
}

// publishRatingChanged recomputes the film's aggregate and fires the event
// in the background with its own timeout, detached from the request context.
func (h *ReviewHandler) publishRatingChanged(filmID, reviewID, userID uint64, action string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filmName := ""
		if film, err := h.Films.GetByID(ctx, filmID); err == nil {
			filmName = film.Name
		}
		scores, err := h.Reviews.ScoresByFilm(ctx, filmID)
		if err != nil {
			scores = nil
		}
		_ = queue_publisher.PublishRatingChanged(ctx, queue.RatingChangedEvent{
			FilmID:        filmID,
			FilmName:      filmName,
			ReviewID:      reviewID,
			UserID:        userID,
			Action:        action,
			AverageRating: rating.Average(scores),
			ReviewCount:   len(scores),
			OccurredAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}()
}
