package storage

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// NewSQLite opens an embedded database, used for local development and
// tests. ":memory:" gives a private in-memory database.
func NewSQLite(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared and avoids
	// SQLITE_BUSY on concurrent writers
	db.SetMaxOpenConns(1)

	d, err := NewDB(db, DialectSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}
