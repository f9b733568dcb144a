package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres, verifies the connection and applies pool
// settings shared by all repositories.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Stores bundles the Postgres-backed repositories around one shared pool.
type Stores struct {
	Jobs         JobStore
	Applications ApplicationStore
	Uploads      UploadStore
	Users        UserStore
}

// NewStores wires the repository implementations to db.
func NewStores(db *sql.DB) *Stores {
	return &Stores{
		Jobs:         &postgresJobStore{db: db},
		Applications: &postgresApplicationStore{db: db},
		Uploads:      &postgresUploadStore{db: db},
		Users:        &postgresUserStore{db: db},
	}
}
