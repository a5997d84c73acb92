// Package repository holds the MySQL-backed stores. Sentinel errors let
// handlers map failures onto HTTP statuses without inspecting SQL errors.
package repository

import "errors"

// ErrEmailExists is returned when a user insert collides on the unique
// email index. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a mutation cannot proceed because of
// dependent state, e.g. deleting a user who still manages others or
// deciding an absence that is no longer pending. HTTP 409.
var ErrConflict = errors.New("conflict")
