// Package repositories contains the GORM data access used by the services.
// Every repository is bound to one *gorm.DB, which may be a transaction.
package repositories

import "errors"

var (
	// ErrNotFound is returned when a keyed lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrStateChanged is returned when a guarded write found the order in another state.
	ErrStateChanged = errors.New("order state changed concurrently")
)
