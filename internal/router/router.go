// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/filmlog/filmlog/internal/auth"
	"github.com/filmlog/filmlog/internal/handler"
	"github.com/filmlog/filmlog/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access only reissues the
	// access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT middleware: the handler accepts either a
	// bearer token (revoke all sessions) or a refresh_token body (revoke one).
	g.POST("/logout", a.Logout)

	authed := e.Group("/v1")
	authed.Use(middleware.JWTAuth(jwtSecret))
	authed.Use(middleware.RequireRole(auth.RoleUser, auth.RoleFilmAdmin))
	authed.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints.  The
// response cache is mounted on the genre list only: genre data is static
// between admin edits, while film payloads embed live rating aggregates and
// must never be served stale.  extra middleware (e.g. the rate limiter) is
// applied to the whole public surface.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, r *handler.ReviewHandler, cacheMW echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) {
	g := e.Group("/v1", extra...)
	g.GET("/films", b.ListFilms)
	g.GET("/films/:id", b.GetFilm)
	g.GET("/films/:id/reviews", r.ListByFilm)
	g.GET("/search/films", b.SearchFilms)
	if cacheMW != nil {
		g.GET("/genres", b.ListGenres, cacheMW)
	} else {
		g.GET("/genres", b.ListGenres)
	}
}

// RegisterReviews registers the authenticated review ledger mutations.  Both
// roles may write reviews; ownership of individual reviews is enforced in
// the handler/repository layer.
func RegisterReviews(e *echo.Echo, r *handler.ReviewHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(auth.RoleUser, auth.RoleFilmAdmin))
	g.POST("/films/:id/reviews", r.Submit)
	g.PATCH("/reviews/:id", r.Update)
	g.DELETE("/reviews/:id", r.Delete)
}

// RegisterAdmin registers the catalog and registry mutations, restricted to
// the filmadmin role.
func RegisterAdmin(e *echo.Echo, f *handler.AdminFilmHandler, gn *handler.AdminGenreHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(auth.RoleFilmAdmin))
	g.POST("/films", f.Create)
	g.PATCH("/films/:id", f.Update)
	g.DELETE("/films/:id", f.Delete)
	g.POST("/genres", gn.Create)
	g.PATCH("/genres/:id", gn.Rename)
	g.DELETE("/genres/:id", gn.Delete)
}
