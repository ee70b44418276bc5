package model

// Film represents a catalog entry in the `films` table together with its
// genre names and the derived rating figures.  AverageRating is never
// persisted: every read recomputes it from the reviews that exist at that
// moment, so the value cannot drift from the ledger.  ReviewCount lets
// clients distinguish "no ratings yet" from a genuine average of 0.0.
//
// Fields:
//
//	ID            – primary key identifier of the film.
//	Name          – film title.
//	Description   – free-form synopsis.
//	Year          – release year.
//	Genres        – genre names associated via film_genres (order not significant).
//	AverageRating – arithmetic mean of current review scores; 0.0 when none.
//	ReviewCount   – number of reviews backing AverageRating.
type Film struct {
	ID            uint64   `json:"id"`             // films.id
	Name          string   `json:"name"`           // films.name
	Description   string   `json:"description"`    // films.description
	Year          int      `json:"year"`           // films.year
	Genres        []string `json:"genres"`         // joined genres.name values
	AverageRating float64  `json:"average_rating"` // derived, never stored
	ReviewCount   int      `json:"review_count"`   // derived, never stored
}
