// Package repository defines the data access layer.  The only store is the
// hosted database behind internal/rowstore; errors from the remote are
// passed through as *rowstore.Error so handlers can map them by kind.
package repository

import "errors"

// ErrNotFound is returned when the targeted row does not exist remotely.
// An update against a missing row is not an error: the remote simply
// reports zero rows changed.
var ErrNotFound = errors.New("not found")
