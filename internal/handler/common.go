package handler // handler defines the HTTP handlers for the catalog API

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/filmlog/filmlog/internal/auth"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWT numeric claims decode as float64, so several representations
// are tolerated.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getPrincipal builds the explicit principal for guard checks from the
// claims the JWT middleware stored in the context.  Requests without a
// usable identity yield auth.Anonymous rather than a zero value, keeping
// "unauthenticated" distinct from "role absent".
func getPrincipal(c echo.Context) auth.Principal {
	id, err := getUserID(c)
	if err != nil || id == 0 {
		return auth.Anonymous
	}
	role, _ := c.Get("role").(string)
	return auth.Principal{ID: id, Role: role}
}
