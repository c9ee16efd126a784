package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const portfolioColumns = `id, user_id, COALESCE(title, ''), slug, status, COALESCE(template_type, ''),
	is_public, published_at, created_at, updated_at`

func scanPortfolio(row pgx.Row) (*Portfolio, error) {
	var p Portfolio
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.Status, &p.TemplateType,
		&p.IsPublic, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePortfolio inserts a draft portfolio with a generated slug.
func (db *DB) CreatePortfolio(ctx context.Context, userID uuid.UUID, title, templateType string) (*Portfolio, error) {
	p, err := scanPortfolio(db.pool.QueryRow(ctx,
		`INSERT INTO portfolios (user_id, title, slug, status, template_type, is_public)
		 VALUES ($1, $2, $3, $4, $5, FALSE)
		 RETURNING `+portfolioColumns,
		userID, title, NewSlug(title), StatusDraft, nullIfEmpty(templateType),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}
	return p, nil
}

// GetPortfolio retrieves a portfolio by ID. Returns nil, nil when absent.
func (db *DB) GetPortfolio(ctx context.Context, id uuid.UUID) (*Portfolio, error) {
	p, err := scanPortfolio(db.pool.QueryRow(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return p, nil
}

// ListPortfolios returns a user's portfolios, newest first.
func (db *DB) ListPortfolios(ctx context.Context, userID uuid.UUID) ([]Portfolio, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	portfolios := []Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, *p)
	}
	return portfolios, rows.Err()
}

// UpdatePortfolio applies the non-nil fields of u.
func (db *DB) UpdatePortfolio(ctx context.Context, id uuid.UUID, u PortfolioUpdate) (*Portfolio, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	p, err := scanPortfolio(db.pool.QueryRow(ctx,
		`UPDATE portfolios SET
		     title = COALESCE($2, title),
		     template_type = COALESCE($3, template_type),
		     status = COALESCE($4, status),
		     is_public = COALESCE($5, is_public),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+portfolioColumns,
		id, u.Title, u.TemplateType, u.Status, u.IsPublic,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("portfolio %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update portfolio: %w", err)
	}
	return p, nil
}

// PublishPortfolio marks a portfolio public and published.
func (db *DB) PublishPortfolio(ctx context.Context, id uuid.UUID) (*Portfolio, error) {
	p, err := scanPortfolio(db.pool.QueryRow(ctx,
		`UPDATE portfolios SET status = $2, is_public = TRUE, published_at = NOW(), updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+portfolioColumns,
		id, StatusPublished,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("portfolio %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to publish portfolio: %w", err)
	}
	return p, nil
}

// GetPublicPortfolioBySlug retrieves a public portfolio. Returns nil, nil when
// the slug is unknown or the portfolio is not public.
func (db *DB) GetPublicPortfolioBySlug(ctx context.Context, slug string) (*Portfolio, error) {
	p, err := scanPortfolio(db.pool.QueryRow(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE slug = $1 AND is_public = TRUE`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get portfolio by slug: %w", err)
	}
	return p, nil
}

// DeletePortfolio deletes a portfolio and its child rows.
func (db *DB) DeletePortfolio(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("portfolio %s: %w", id, ErrNotFound)
	}
	return nil
}
