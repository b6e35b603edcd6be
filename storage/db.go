package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DB wraps a database/sql handle with the dialect needed to pick migrations
// and placeholders. Queries are written with '?' placeholders.
type DB struct {
	db      *sql.DB
	dialect Dialect
}

func NewDB(db *sql.DB, dialect Dialect) (*DB, error) {
	d := &DB{db: db, dialect: dialect}

	var wanted []string
	switch dialect {
	case DialectPostgres:
		wanted = pgMigration
	case DialectSQLite:
		wanted = sqliteMigration
	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
	if err := d.migrate(wanted); err != nil {
		return nil, fmt.Errorf("could not migrate database: %w", err)
	}

	return d, nil
}

func (d *DB) Dialect() Dialect {
	return d.dialect
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) begin(ctx context.Context) (*sql.Tx, error) {
	return d.db.BeginTx(ctx, nil)
}

func (d *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, d.rebind(query), args...)
}

// rebind turns '?' placeholders into $1, $2, ... for postgres.
func (d *DB) rebind(query string) string {
	if d.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}

func (d *DB) migrate(wanted []string) error {
	query := `CREATE TABLE IF NOT EXISTS migration
("id" SERIAL PRIMARY KEY, "query" TEXT)`
	if d.dialect == DialectSQLite {
		query = `CREATE TABLE IF NOT EXISTS migration
("id" INTEGER PRIMARY KEY AUTOINCREMENT, "query" TEXT)`
	}
	if _, err := d.db.Exec(query); err != nil {
		return err
	}

	// find existing
	rows, err := d.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}

	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// compare
	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	// execute missing
	for _, query := range missing {
		if _, err := d.db.Exec(query); err != nil {
			return err
		}

		// register
		if _, err := d.db.Exec(d.rebind(`
INSERT INTO migration
(query) VALUES (?)
`), query); err != nil {
			return err
		}
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// do nothing
		case want != existing[i]:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}
