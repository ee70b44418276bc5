// Package queue defines message payloads exchanged over the message broker.
package queue

// RatingChangedEvent is published whenever the review ledger of a film
// changes (a review submitted, edited or removed). It carries the freshly
// recomputed aggregate so downstream consumers can log or trigger analytics
// without querying the primary database.
type RatingChangedEvent struct {
	FilmID        uint64  `json:"film_id"`
	FilmName      string  `json:"film_name"`
	ReviewID      uint64  `json:"review_id"`
	UserID        uint64  `json:"user_id"`
	Action        string  `json:"action"` // created | updated | deleted
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
	OccurredAt    string  `json:"occurred_at"`
}
