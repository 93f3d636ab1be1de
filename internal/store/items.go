package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/stash/internal/types"
	"github.com/oklog/ulid/v2"
)

const itemColumns = `id, content_type, provider, provider_item_id, url, title,
	creator, thumbnail_url, duration_seconds, published_at, created_at, updated_at`

// CreateItem inserts a new canonical item, assigning its ID and timestamps.
func CreateItem(ctx context.Context, q querier, candidate types.IngestCandidate, provider string, now time.Time) (*types.Item, error) {
	item := types.Item{
		ID:              ulid.Make().String(),
		ContentType:     candidate.ContentType,
		Provider:        provider,
		ProviderItemID:  candidate.ProviderItemID,
		URL:             candidate.URL,
		Title:           candidate.Title,
		Creator:         candidate.Creator,
		ThumbnailURL:    candidate.ThumbnailURL,
		DurationSeconds: candidate.DurationSeconds,
		PublishedAt:     candidate.PublishedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.ContentType, item.Provider, item.ProviderItemID,
		item.URL, item.Title, item.Creator, item.ThumbnailURL, item.DurationSeconds,
		nullableTime(item.PublishedAt), formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	return &item, nil
}

// GetItemByProviderID looks up the canonical item for one provider identity.
func GetItemByProviderID(ctx context.Context, q querier, provider, providerItemID string) (*types.Item, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE provider = ? AND provider_item_id = ?
	`, provider, providerItemID)

	return scanItem(row)
}

// ListItems returns all canonical items ordered by ID.
func ListItems(ctx context.Context, q querier) ([]types.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []types.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanItem(scanner interface{ Scan(...any) error }) (*types.Item, error) {
	var item types.Item
	var publishedAt sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&item.ID, &item.ContentType, &item.Provider, &item.ProviderItemID,
		&item.URL, &item.Title, &item.Creator, &item.ThumbnailURL,
		&item.DurationSeconds, &publishedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}

	item.PublishedAt = parseNullableTime(publishedAt)
	item.CreatedAt = parseTime(createdAt)
	item.UpdatedAt = parseTime(updatedAt)
	return &item, nil
}

const userItemColumns = `id, item_id, state, ingested_at, bookmarked_at,
	archived_at, created_at, updated_at`

// CreateUserItem inserts the per-user state record for a canonical item.
func CreateUserItem(ctx context.Context, q querier, itemID string, state types.ItemState, now time.Time) (*types.UserItem, error) {
	userItem := types.UserItem{
		ID:         ulid.Make().String(),
		ItemID:     itemID,
		State:      state,
		IngestedAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO user_items (`+userItemColumns+`)
		VALUES (?, ?, ?, ?, NULL, NULL, ?, ?)
	`, userItem.ID, userItem.ItemID, userItem.State,
		formatTime(now), formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert user item: %w", err)
	}

	return &userItem, nil
}

// GetUserItem fetches one user item by ID.
func GetUserItem(ctx context.Context, q querier, id string) (*types.UserItem, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+userItemColumns+`
		FROM user_items
		WHERE id = ?
	`, id)

	return scanUserItem(row)
}

// GetUserItemByItemID fetches the user item tracking a canonical item.
func GetUserItemByItemID(ctx context.Context, q querier, itemID string) (*types.UserItem, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+userItemColumns+`
		FROM user_items
		WHERE item_id = ?
	`, itemID)

	return scanUserItem(row)
}

// ListUserItems returns all user items ordered by ID.
func ListUserItems(ctx context.Context, q querier) ([]types.UserItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+userItemColumns+`
		FROM user_items
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query user items: %w", err)
	}
	defer rows.Close()

	var userItems []types.UserItem
	for rows.Next() {
		userItem, err := scanUserItem(rows)
		if err != nil {
			return nil, err
		}
		userItems = append(userItems, *userItem)
	}
	return userItems, rows.Err()
}

// BookmarkUserItem moves the user item to BOOKMARKED, stamps bookmarked_at,
// and clears archived_at.
func BookmarkUserItem(ctx context.Context, q querier, id string, now time.Time) error {
	result, err := q.ExecContext(ctx, `
		UPDATE user_items
		SET state = ?, bookmarked_at = ?, archived_at = NULL, updated_at = ?
		WHERE id = ?
	`, types.StateBookmarked, formatTime(now), formatTime(now), id)
	if err != nil {
		return fmt.Errorf("bookmark user item: %w", err)
	}
	return requireRow(result)
}

// ArchiveUserItem moves the user item to ARCHIVED and stamps archived_at.
func ArchiveUserItem(ctx context.Context, q querier, id string, now time.Time) error {
	result, err := q.ExecContext(ctx, `
		UPDATE user_items
		SET state = ?, archived_at = ?, updated_at = ?
		WHERE id = ?
	`, types.StateArchived, formatTime(now), formatTime(now), id)
	if err != nil {
		return fmt.Errorf("archive user item: %w", err)
	}
	return requireRow(result)
}

// SetUserItemState sets an explicit state. The matching transition timestamp
// is written only if it was never set (first write wins).
func SetUserItemState(ctx context.Context, q querier, id string, state types.ItemState, now time.Time) error {
	ts := formatTime(now)
	result, err := q.ExecContext(ctx, `
		UPDATE user_items
		SET state = ?,
		    bookmarked_at = CASE WHEN ? = 'BOOKMARKED' AND bookmarked_at IS NULL THEN ? ELSE bookmarked_at END,
		    archived_at   = CASE WHEN ? = 'ARCHIVED'   AND archived_at   IS NULL THEN ? ELSE archived_at   END,
		    updated_at = ?
		WHERE id = ?
	`, state, state, ts, state, ts, ts, id)
	if err != nil {
		return fmt.Errorf("set user item state: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUserItem(scanner interface{ Scan(...any) error }) (*types.UserItem, error) {
	var userItem types.UserItem
	var ingestedAt, bookmarkedAt, archivedAt sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&userItem.ID, &userItem.ItemID, &userItem.State,
		&ingestedAt, &bookmarkedAt, &archivedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user item: %w", err)
	}

	userItem.IngestedAt = parseNullableTime(ingestedAt)
	userItem.BookmarkedAt = parseNullableTime(bookmarkedAt)
	userItem.ArchivedAt = parseNullableTime(archivedAt)
	userItem.CreatedAt = parseTime(createdAt)
	userItem.UpdatedAt = parseTime(updatedAt)
	return &userItem, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
