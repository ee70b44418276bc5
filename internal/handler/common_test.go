package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/filmlog/filmlog/internal/auth"
)

func newTestContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestGetUserID(t *testing.T) {
	cases := []struct {
		name    string
		value   interface{}
		want    uint64
		wantErr bool
	}{
		{"uint64", uint64(42), 42, false},
		{"int", int(7), 7, false},
		{"int64", int64(9), 9, false},
		{"float64 from jwt claims", float64(123), 123, false},
		{"numeric string", "55", 55, false},
		{"garbage string", "abc", 0, true},
		{"missing", nil, 0, true},
		{"wrong type", struct{}{}, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestContext(t)
			if tc.value != nil {
				c.Set("user_id", tc.value)
			}
			got, err := getUserID(c)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetPrincipal(t *testing.T) {
	t.Run("authenticated user", func(t *testing.T) {
		c := newTestContext(t)
		c.Set("user_id", float64(42))
		c.Set("role", auth.RoleFilmAdmin)
		p := getPrincipal(c)
		assert.True(t, p.Authenticated())
		assert.Equal(t, uint64(42), p.ID)
		assert.True(t, p.IsFilmAdmin())
	})

	t.Run("no identity yields anonymous", func(t *testing.T) {
		c := newTestContext(t)
		p := getPrincipal(c)
		assert.False(t, p.Authenticated())
		assert.Equal(t, auth.Anonymous, p)
	})

	t.Run("zero id yields anonymous", func(t *testing.T) {
		c := newTestContext(t)
		c.Set("user_id", uint64(0))
		c.Set("role", auth.RoleUser)
		p := getPrincipal(c)
		assert.False(t, p.Authenticated())
	})
}
