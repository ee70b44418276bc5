package model

// Genre maps a stable identifier to a unique, case-sensitive genre name.
// Films reference genres by name in API payloads; the association itself is
// kept in the film_genres join table so a rename propagates automatically.
//
// Fields:
//
//	ID   – primary key identifier of the genre.
//	Name – unique genre name (e.g. "sci-fi", "drama").
type Genre struct {
	ID   uint64 `json:"id"`   // genres.id
	Name string `json:"name"` // genres.name
}
