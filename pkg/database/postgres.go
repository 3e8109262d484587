package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Postgres represents a PostgreSQL database connection
type Postgres struct {
	DB *sql.DB

	// QueryTimeout bounds every statement issued through Context. Zero disables it.
	QueryTimeout time.Duration
}

// NewPostgres creates a new PostgreSQL connection
func NewPostgres(dsn string, queryTimeout time.Duration) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{DB: db, QueryTimeout: queryTimeout}, nil
}

// Context derives a context bounded by the configured query timeout.
func (p *Postgres) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.QueryTimeout)
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.DB.Close()
}

// Ping checks if the database is available
func (p *Postgres) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}
