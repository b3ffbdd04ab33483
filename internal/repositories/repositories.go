// package repositories provides the persistence layer for recorded runs.
package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence increments and returns the sequence counter of table (the single row of
// <table>_sequence), giving runs a human-readable number such as run #42.
func NextSequence(db *sql.DB, table string) (int, error) {
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)

	var sequence int
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}
