// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// allocator and handlers to distinguish between failure scenarios without
// inspecting SQL driver errors. For example, ErrCabinNotFound maps to a
// 404 response.
package repository

import "errors"

// ErrCabinNotFound is returned when a cabin lookup by id matches no row.
var ErrCabinNotFound = errors.New("cabin not found")

// ErrTripNotFound is returned when a trip lookup by id matches no row.
var ErrTripNotFound = errors.New("trip not found")
