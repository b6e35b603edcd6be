package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type PostgresInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

func (pi PostgresInfo) DSN() string {
	sslMode := pi.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pi.Host, pi.Port, pi.User, pi.Password, pi.Database, sslMode)
}

func NewPostgres(pi PostgresInfo) (*DB, error) {
	db, err := sql.Open("postgres", pi.DSN())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	d, err := NewDB(db, DialectPostgres)
	if err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}
