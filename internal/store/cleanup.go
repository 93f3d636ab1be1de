package store

import (
	"context"
	"fmt"
)

// UserTables lists every user-owned table cleared by account cleanup, in
// deletion order (children before parents). The migration ledger is not a
// user table and survives cleanup.
var UserTables = []string{
	"user_items",
	"items",
	"seen_items",
	"sources",
	"sync_clients",
	"profile",
}

// Cleanup erases all user data and resets the version counter to 0. The
// whole erase runs in one transaction and is idempotent.
func (s *SQLiteStore) Cleanup(ctx context.Context) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range UserTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, fmt.Errorf("clear table %s: %w", table, err)
		}
	}

	if err := SetSyncMeta(ctx, tx, SyncMetaVersion, "0"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	cleared := make([]string, len(UserTables))
	copy(cleared, UserTables)
	return cleared, nil
}
