package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, COALESCE(display_name, ''), COALESCE(avatar_url, ''),
	COALESCE(firebase_uid, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &u.FirebaseUID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves a user by ID. Returns nil, nil when absent.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByFirebaseUID retrieves a user by identity-provider UID. Returns nil, nil when absent.
func (db *DB) GetUserByFirebaseUID(ctx context.Context, uid string) (*User, error) {
	if uid == "" {
		return nil, nil
	}
	u, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE firebase_uid = $1`, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by uid: %w", err)
	}
	return u, nil
}

// GetOrCreateUserByFirebaseUID returns the user for uid, creating it on first sight.
// An existing row with the same email is linked to uid.
func (db *DB) GetOrCreateUserByFirebaseUID(ctx context.Context, uid, email, displayName string) (*User, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty")
	}
	if u, err := db.GetUserByFirebaseUID(ctx, uid); err != nil || u != nil {
		return u, err
	}

	u, err := scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO users (email, display_name, firebase_uid)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET
		     firebase_uid = EXCLUDED.firebase_uid,
		     display_name = COALESCE(users.display_name, EXCLUDED.display_name),
		     updated_at = NOW()
		 RETURNING `+userColumns,
		email, nullIfEmpty(displayName), uid,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}
