package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/stash/internal/types"
)

// GetProfile reads the account profile. Returns ErrNotFound if no profile
// was ever stored.
func GetProfile(ctx context.Context, q querier) (*types.Profile, error) {
	row := q.QueryRowContext(ctx, `
		SELECT user_id, email, given_name, family_name, created_at, updated_at
		FROM profile
		WHERE id = 1
	`)

	var profile types.Profile
	var createdAt, updatedAt string
	err := row.Scan(&profile.UserID, &profile.Email, &profile.GivenName,
		&profile.FamilyName, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	profile.CreatedAt = parseTime(createdAt)
	profile.UpdatedAt = parseTime(updatedAt)
	return &profile, nil
}

// UpsertProfile writes the single profile row, preserving created_at on
// update.
func UpsertProfile(ctx context.Context, q querier, profile types.Profile, now time.Time) error {
	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO profile (id, user_id, email, given_name, family_name, created_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			given_name = excluded.given_name,
			family_name = excluded.family_name,
			updated_at = excluded.updated_at
	`, profile.UserID, profile.Email, profile.GivenName, profile.FamilyName,
		formatTime(createdAt), formatTime(now))
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
