package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/stash/internal/types"
)

// UpsertSource inserts the source or, if its ID already exists, refreshes the
// mutable fields.
func UpsertSource(ctx context.Context, q querier, source types.Source, now time.Time) error {
	var config any
	if len(source.Config) > 0 {
		config = string(source.Config)
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO sources (id, provider, provider_source_id, name, config, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider = excluded.provider,
			provider_source_id = excluded.provider_source_id,
			name = excluded.name,
			config = excluded.config
	`, source.ID, source.Provider, source.ProviderSourceID, source.Name, config, formatTime(now))
	if err != nil {
		return fmt.Errorf("upsert source: %w", err)
	}
	return nil
}

// DeleteSource removes a source by ID. Deleting an absent source is a no-op.
func DeleteSource(ctx context.Context, q querier, id string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

// GetSource fetches one source by ID.
func GetSource(ctx context.Context, q querier, id string) (*types.Source, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, provider, provider_source_id, name, config, created_at
		FROM sources
		WHERE id = ?
	`, id)

	return scanSource(row)
}

// ListSources returns all sources ordered by ID.
func ListSources(ctx context.Context, q querier) ([]types.Source, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, provider, provider_source_id, name, config, created_at
		FROM sources
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []types.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *source)
	}
	return sources, rows.Err()
}

func scanSource(scanner interface{ Scan(...any) error }) (*types.Source, error) {
	var source types.Source
	var config sql.NullString
	var createdAt string

	err := scanner.Scan(&source.ID, &source.Provider, &source.ProviderSourceID,
		&source.Name, &config, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan source: %w", err)
	}

	if config.Valid {
		source.Config = []byte(config.String)
	}
	source.CreatedAt = parseTime(createdAt)
	return &source, nil
}

// HasSeenMark reports whether (sourceID, providerItemID) was already ingested.
func HasSeenMark(ctx context.Context, q querier, sourceID, providerItemID string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `
		SELECT 1 FROM seen_items WHERE source_id = ? AND provider_item_id = ?
	`, sourceID, providerItemID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query seen mark: %w", err)
	}
	return true, nil
}

// CreateSeenMark records that (sourceID, providerItemID) has been ingested.
// A mark is created at most once; re-inserting is an error.
func CreateSeenMark(ctx context.Context, q querier, sourceID, providerItemID string, now time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO seen_items (source_id, provider_item_id, seen_at)
		VALUES (?, ?, ?)
	`, sourceID, providerItemID, formatTime(now))
	if err != nil {
		return fmt.Errorf("insert seen mark: %w", err)
	}
	return nil
}
