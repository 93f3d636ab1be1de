package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Sync metadata keys.
const (
	SyncMetaVersion = "version"
)

// GetSyncMeta reads one sync_meta value. Returns ErrNotFound for absent keys.
func GetSyncMeta(ctx context.Context, q querier, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM sync_meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query sync meta %q: %w", key, err)
	}
	return value, nil
}

// SetSyncMeta writes one sync_meta value.
func SetSyncMeta(ctx context.Context, q querier, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO sync_meta (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set sync meta %q: %w", key, err)
	}
	return nil
}

// Version reads the global version counter. A missing row reads as 0.
func Version(ctx context.Context, q querier) (int64, error) {
	value, err := GetSyncMeta(ctx, q, SyncMetaVersion)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	version, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version %q: %w", value, err)
	}
	return version, nil
}

// BumpVersion increments the global version counter by one and returns the
// new value.
func BumpVersion(ctx context.Context, q querier) (int64, error) {
	_, err := q.ExecContext(ctx, `
		INSERT INTO sync_meta (key, value)
		VALUES (?, '1')
		ON CONFLICT(key) DO UPDATE SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT)
	`, SyncMetaVersion)
	if err != nil {
		return 0, fmt.Errorf("bump version: %w", err)
	}

	return Version(ctx, q)
}
