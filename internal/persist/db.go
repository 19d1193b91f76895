// Package persist is the Postgres-backed implementation of the
// session package's LoginAuthority and BanAuthority collaborators
// (§6) — everything this core treats as an external boundary for
// credentials, character data and bans.
package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the pool.
func (d *DB) Close() { d.pool.Close() }

// Pool exposes the underlying pgx pool, e.g. for goose migrations.
func (d *DB) Pool() *pgxpool.Pool { return d.pool }
