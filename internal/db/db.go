// Package db provides PostgreSQL access for users, portfolios and built profile data.
//
// Tables: users, portfolios, resume_data, profile_data, projects, skills,
// social_links, portfolio_sections, portfolio_versions, api_credentials.
// Child tables cascade on portfolio deletion.
package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by mutations that matched no row.
var ErrNotFound = errors.New("not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugBase = 50

// Slugify converts a title into a URL-safe slug. Empty titles become "portfolio".
func Slugify(title string) string {
	s := slugUnsafe.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugBase {
		s = strings.TrimRight(s[:maxSlugBase], "-")
	}
	if s == "" {
		return "portfolio"
	}
	return s
}

// NewSlug returns Slugify(title) with a short random suffix.
func NewSlug(title string) string {
	return Slugify(title) + "-" + uuid.NewString()[:8]
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
