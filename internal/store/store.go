// Package store is the gorm-backed record store for whitelist entries, packages and users.
package store

import "errors"

// ErrNilDB is returned by constructors given no connection.
var ErrNilDB = errors.New("store: nil db")

// MutationResult reports how many rows a write touched.
type MutationResult struct {
	RowsAffected int64
}

// Applied reports whether the write touched at least one row.
func (r MutationResult) Applied() bool {
	return r.RowsAffected > 0
}
