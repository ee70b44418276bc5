package model

import "errors"

// Score bounds for a review.  The scale is inclusive on both ends.
const (
	MinScore = 0
	MaxScore = 10
)

// ErrInvalidScore is returned when a review score falls outside [0,10].
// Validation happens before any write so a bad score never causes a
// partial mutation.
var ErrInvalidScore = errors.New("score must be between 0 and 10")

// Review is a user's opinion of a film as stored in the `reviews` table.
// At most one review exists per (film_id, user_id) pair at any time; the
// table enforces this with a unique key and submissions upsert against it.
// Score and Recommend are independent: a 10-point scale and a binary
// thumbs-up, neither derived from the other.
//
// Fields:
//
//	ID        – primary key identifier.
//	FilmID    – film being reviewed (FK films.id).
//	UserID    – review author (FK users.id).
//	Text      – free-form review body.
//	Score     – integer in [0,10].
//	Recommend – whether the author recommends the film.
type Review struct {
	ID        uint64 `json:"id"`        // reviews.id
	FilmID    uint64 `json:"film_id"`   // reviews.film_id
	UserID    uint64 `json:"user_id"`   // reviews.user_id
	Text      string `json:"text"`      // reviews.body
	Score     int    `json:"score"`     // reviews.score
	Recommend bool   `json:"recommend"` // reviews.recommend
}

// ValidateScore checks a score against the [MinScore, MaxScore] range.
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return ErrInvalidScore
	}
	return nil
}
