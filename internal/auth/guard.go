package auth

// Action enumerates the mutations the guard rules on.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind identifies the resource class an action targets.
type Kind string

const (
	KindFilm   Kind = "film"
	KindGenre  Kind = "genre"
	KindReview Kind = "review"
)

// Resource describes the target of an action.  OwnerID is meaningful only
// for reviews, where it carries the review's user_id so the guard can grant
// owners access to their own records.
type Resource struct {
	Kind    Kind
	OwnerID uint64
}

// Film returns the resource descriptor for film mutations.
func Film() Resource { return Resource{Kind: KindFilm} }

// Genre returns the resource descriptor for genre mutations.
func Genre() Resource { return Resource{Kind: KindGenre} }

// Review returns the resource descriptor for a review owned by the given
// user.  Pass zero for review creation, where ownership is implicit in the
// submitting principal.
func Review(ownerID uint64) Resource { return Resource{Kind: KindReview, OwnerID: ownerID} }

// Authorize applies the policy table and reports whether the principal may
// perform the action on the resource:
//
//	film.*    and genre.*  -> filmadmin only
//	review.create          -> any authenticated principal
//	review.update/delete   -> the review's owner or a filmadmin
//
// It is deterministic in its arguments and has no side effects.  A false
// result is a denial the caller must honor by not mutating.
func Authorize(p Principal, action Action, res Resource) bool {
	if !p.Authenticated() {
		return false
	}
	switch res.Kind {
	case KindFilm, KindGenre:
		return p.IsFilmAdmin()
	case KindReview:
		if action == ActionCreate {
			return true
		}
		return p.ID == res.OwnerID || p.IsFilmAdmin()
	}
	return false
}
