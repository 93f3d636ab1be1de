package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/stash/internal/types"
)

// LastMutationID returns the last-applied mutation sequence number for the
// given client key, or 0 for a client never seen before.
func LastMutationID(ctx context.Context, q querier, clientKey string) (int64, error) {
	var last int64
	err := q.QueryRowContext(ctx, `
		SELECT last_mutation_id FROM sync_clients WHERE client_key = ?
	`, clientKey).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query last mutation id: %w", err)
	}
	return last, nil
}

// SetLastMutationID records the last-applied mutation for a logical client,
// creating the client record on first use. last_mutation_id never decreases.
func SetLastMutationID(ctx context.Context, q querier, clientGroupID, clientID string, mutationID int64, now time.Time) error {
	clientKey := clientGroupID + "/" + clientID
	_, err := q.ExecContext(ctx, `
		INSERT INTO sync_clients (client_key, client_group_id, client_id, last_mutation_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(client_key) DO UPDATE SET
			last_mutation_id = MAX(last_mutation_id, excluded.last_mutation_id),
			updated_at = excluded.updated_at
	`, clientKey, clientGroupID, clientID, mutationID, formatTime(now))
	if err != nil {
		return fmt.Errorf("set last mutation id: %w", err)
	}
	return nil
}

// ListGroupClients returns every known client in a client group.
func ListGroupClients(ctx context.Context, q querier, clientGroupID string) ([]types.SyncClient, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT client_key, client_group_id, client_id, last_mutation_id, updated_at
		FROM sync_clients
		WHERE client_group_id = ?
		ORDER BY client_id ASC
	`, clientGroupID)
	if err != nil {
		return nil, fmt.Errorf("query group clients: %w", err)
	}
	defer rows.Close()

	var clients []types.SyncClient
	for rows.Next() {
		var client types.SyncClient
		var updatedAt string
		if err := rows.Scan(&client.ClientKey, &client.ClientGroupID,
			&client.ClientID, &client.LastMutationID, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan sync client: %w", err)
		}
		client.UpdatedAt = parseTime(updatedAt)
		clients = append(clients, client)
	}
	return clients, rows.Err()
}
