// Package postgres implements the repository interfaces on PostgreSQL using
// database/sql with parameterized queries.
package postgres

import (
	"database/sql"
	"errors"
)

// IsNoRowsError reports whether err stems from an empty result set.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
