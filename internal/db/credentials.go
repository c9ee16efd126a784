package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ServiceGitHub is the credential service name for GitHub tokens.
const ServiceGitHub = "github"

// SaveCredential stores a sealed token, replacing any previous token for the same service.
func (db *DB) SaveCredential(ctx context.Context, userID uuid.UUID, service, sealedToken, username string) (*Credential, error) {
	if sealedToken == "" {
		return nil, errors.New("token cannot be empty")
	}
	var c Credential
	err := db.pool.QueryRow(ctx,
		`INSERT INTO api_credentials (user_id, service, token, username)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, service) DO UPDATE SET token = $3, username = $4, created_at = NOW()
		 RETURNING id, user_id, service, token, COALESCE(username, ''), created_at, last_used`,
		userID, service, sealedToken, nullIfEmpty(username),
	).Scan(&c.ID, &c.UserID, &c.Service, &c.SealedToken, &c.Username, &c.CreatedAt, &c.LastUsed)
	if err != nil {
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}
	return &c, nil
}

// GetCredential returns a user's credential for service and marks it used.
// Returns nil, nil when none is stored.
func (db *DB) GetCredential(ctx context.Context, userID uuid.UUID, service string) (*Credential, error) {
	var c Credential
	err := db.pool.QueryRow(ctx,
		`UPDATE api_credentials SET last_used = NOW()
		 WHERE user_id = $1 AND service = $2
		 RETURNING id, user_id, service, token, COALESCE(username, ''), created_at, last_used`,
		userID, service,
	).Scan(&c.ID, &c.UserID, &c.Service, &c.SealedToken, &c.Username, &c.CreatedAt, &c.LastUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &c, nil
}

// DeleteCredential removes a user's credential for service.
func (db *DB) DeleteCredential(ctx context.Context, userID uuid.UUID, service string) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM api_credentials WHERE user_id = $1 AND service = $2`, userID, service)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("credential %s: %w", service, ErrNotFound)
	}
	return nil
}
