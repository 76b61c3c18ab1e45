// Package sentinel holds the errors records stores return. Services translate
// them into coded domain errors; handlers never see them directly.
package sentinel

import "errors"

var (
	// ErrNotFound means no stored record has the requested ID.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a record with the same ID is already stored.
	ErrConflict = errors.New("record already exists")
)
