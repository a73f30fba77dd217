// Package repository implements the MySQL data access layer. Sentinel errors
// defined here let handlers map failures to HTTP statuses without inspecting
// driver errors themselves.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update collides with the
// unique email index. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a user lookup by id matches no row.
// Handlers translate it into HTTP 404.
var ErrUserNotFound = errors.New("user not found")

// ErrTaskNotFound is returned when a task lookup by id matches no row.
// Handlers translate it into HTTP 404.
var ErrTaskNotFound = errors.New("task not found")
