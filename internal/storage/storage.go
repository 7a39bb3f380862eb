// Package storage provides yarn.VariableStorage implementations: an
// in-memory map for the common case, and a SQLite-backed store for hosts
// that need variables to survive a process restart.
package storage

import "errors"

// ErrNotFound is returned by storage backends that can distinguish "never
// set" from "set to null" at the persistence layer.
var ErrNotFound = errors.New("the requested variable was not found")

// ErrConstraintViolation is raised by SQLiteStorage on a uniqueness
// constraint failure.
var ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
