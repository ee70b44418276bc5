package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize_PolicyTable(t *testing.T) {
	admin := Principal{ID: 1, Role: RoleFilmAdmin}
	user := Principal{ID: 42, Role: RoleUser}

	tests := []struct {
		name   string
		p      Principal
		action Action
		res    Resource
		want   bool
	}{
		{"admin creates film", admin, ActionCreate, Film(), true},
		{"admin updates film", admin, ActionUpdate, Film(), true},
		{"admin deletes film", admin, ActionDelete, Film(), true},
		{"user creates film", user, ActionCreate, Film(), false},
		{"user deletes film", user, ActionDelete, Film(), false},
		{"anonymous creates film", Anonymous, ActionCreate, Film(), false},

		{"admin creates genre", admin, ActionCreate, Genre(), true},
		{"admin renames genre", admin, ActionUpdate, Genre(), true},
		{"user deletes genre", user, ActionDelete, Genre(), false},
		{"anonymous deletes genre", Anonymous, ActionDelete, Genre(), false},

		{"user creates review", user, ActionCreate, Review(0), true},
		{"admin creates review", admin, ActionCreate, Review(0), true},
		{"anonymous creates review", Anonymous, ActionCreate, Review(0), false},

		{"owner updates own review", user, ActionUpdate, Review(42), true},
		{"owner deletes own review", user, ActionDelete, Review(42), true},
		{"user updates foreign review", user, ActionUpdate, Review(7), false},
		{"user deletes foreign review", user, ActionDelete, Review(7), false},
		{"admin updates foreign review", admin, ActionUpdate, Review(7), true},
		{"admin deletes foreign review", admin, ActionDelete, Review(7), true},
		{"anonymous updates review", Anonymous, ActionUpdate, Review(42), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.p, tt.action, tt.res))
		})
	}
}

func TestAuthorize_Deterministic(t *testing.T) {
	p := Principal{ID: 9, Role: RoleUser}
	for i := 0; i < 3; i++ {
		assert.True(t, Authorize(p, ActionUpdate, Review(9)))
		assert.False(t, Authorize(p, ActionUpdate, Film()))
	}
}

func TestAnonymousSentinel(t *testing.T) {
	assert.False(t, Anonymous.Authenticated())
	assert.False(t, Anonymous.IsFilmAdmin())

	// A zero-valued principal is not authenticated either, but Anonymous is
	// the value callers are expected to pass on purpose.
	var zero Principal
	assert.False(t, zero.Authenticated())
}

func TestAuthorize_UnknownKindDenied(t *testing.T) {
	admin := Principal{ID: 1, Role: RoleFilmAdmin}
	assert.False(t, Authorize(admin, ActionCreate, Resource{Kind: Kind("poster")}))
}
