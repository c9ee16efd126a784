package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ListVersions returns a portfolio's snapshots, newest first.
func (db *DB) ListVersions(ctx context.Context, portfolioID uuid.UUID) ([]Version, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, portfolio_id, version_number, data, changed_by, COALESCE(change_description, ''), created_at
		 FROM portfolio_versions WHERE portfolio_id = $1 ORDER BY version_number DESC`,
		portfolioID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	versions := []Version{}
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.PortfolioID, &v.VersionNumber, &v.Data, &v.ChangedBy,
			&v.ChangeDescription, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
