// Package auth defines the acting principal and the authorization guard
// consulted before every mutating catalog or review operation.  The guard is
// pure policy: it never touches storage and denial is a normal outcome, not
// an error.
package auth

// Role names carried in the JWT "role" claim and the users.role column.
const (
	RoleUser      = "user"      // ordinary authenticated account
	RoleFilmAdmin = "filmadmin" // privileged role allowed to mutate films and genres
)

// Principal is the authenticated (or anonymous) actor issuing a request.
// It is always passed explicitly into guard checks; nothing in the core
// reads ambient session state.
type Principal struct {
	ID   uint64 // users.id; zero for anonymous
	Role string // RoleUser or RoleFilmAdmin; empty for anonymous

	anonymous bool
}

// Anonymous is the explicit sentinel for an unauthenticated caller.  It is
// distinct from a zero Principal so that "no principal" is never confused
// with "role absent".
var Anonymous = Principal{anonymous: true}

// Authenticated reports whether the principal represents a logged-in user.
func (p Principal) Authenticated() bool {
	return !p.anonymous && p.ID != 0
}

// IsFilmAdmin reports whether the principal holds the filmadmin role.
func (p Principal) IsFilmAdmin() bool {
	return p.Authenticated() && p.Role == RoleFilmAdmin
}
