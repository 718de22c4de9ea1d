// Package store persists the directorate aggregates in SQLite. One store per
// aggregate; cross-references are plain foreign keys resolved at read time.
package store

import (
	"database/sql"
	"errors"

	"github.com/veydran/directorate/internal/model"
)

// ErrNotFound is returned when a referenced row does not exist (or, for
// guarded updates, no longer matches).
var ErrNotFound = errors.New("not found")

func nullID(id *model.ID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}

func idFromNull(ns sql.NullString) *model.ID {
	if !ns.Valid {
		return nil
	}
	id := model.ID(ns.String)
	return &id
}
