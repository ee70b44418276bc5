// Package repository contains data access logic separated from HTTP
// handlers.  This file defines the sentinel errors shared across the
// repositories so that handlers can translate failure kinds into HTTP
// status codes without inspecting SQL driver errors themselves.  All of
// these are recoverable at the boundary; none are fatal to the process.
package repository

import "errors"

// ErrFilmNotFound is returned when a film id does not exist.
var ErrFilmNotFound = errors.New("film not found")

// ErrGenreNotFound is returned when a genre id or name does not exist.
var ErrGenreNotFound = errors.New("genre not found")

// ErrReviewNotFound is returned when a review id does not exist.
var ErrReviewNotFound = errors.New("review not found")

// ErrDuplicateName is returned when creating or renaming a genre would
// collide with an existing genre name (exact match).  Handlers translate
// this into HTTP 409.
var ErrDuplicateName = errors.New("name already exists")

// ErrForbidden is returned when the acting principal is not allowed to
// mutate the targeted resource, e.g. a non-owner non-admin updating a
// review.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrGenreReferenced is returned when a genre delete is blocked because
// one or more films still reference the genre.  The blocking policy is
// deliberate: removing a referenced genre would silently edit the genre
// sets of every film that carries it.  Handlers translate this into 409.
var ErrGenreReferenced = errors.New("genre is referenced by films")

// ErrEmailExists is returned when registration collides with an existing
// user email.
var ErrEmailExists = errors.New("email already exists")
