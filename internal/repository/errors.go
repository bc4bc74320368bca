// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the lending engine to distinguish between different
// failure scenarios. For example, ErrForbidden indicates that the
// current user is not authorized to operate on a record owned by
// someone else, while ErrConflict signals that an operation cannot
// proceed due to conflicting state (e.g. creating an item with a
// duplicate ISBN).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a record they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update cannot be
// performed because of conflicting state, such as creating an item
// with an ISBN that already exists. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotPhysical is returned by copy-counter operations when the
// targeted catalog item is not a physical item and therefore has no
// inventory to manage.
var ErrNotPhysical = errors.New("item is not physical")
