package actor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyperengineering/stash/internal/store"
	"github.com/hyperengineering/stash/internal/sync"
)

// MutationError identifies the mutation that aborted a push batch.
type MutationError struct {
	MutationID int64
	Err        error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("mutation %d failed: %v", e.MutationID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// applyMutation maps one decoded mutation to its store transition inside the
// push transaction. The type switch is exhaustive over the closed
// MutationArgs set.
func applyMutation(ctx context.Context, tx *sql.Tx, args sync.MutationArgs, ts time.Time) error {
	switch args := args.(type) {
	case sync.BookmarkItemArgs:
		return store.BookmarkUserItem(ctx, tx, args.UserItemID, ts)
	case sync.ArchiveItemArgs:
		return store.ArchiveUserItem(ctx, tx, args.UserItemID, ts)
	case sync.UpdateUserItemStateArgs:
		return store.SetUserItemState(ctx, tx, args.UserItemID, args.State, ts)
	case sync.AddSourceArgs:
		return store.UpsertSource(ctx, tx, args.Source, ts)
	case sync.RemoveSourceArgs:
		return store.DeleteSource(ctx, tx, args.SourceID)
	}
	return fmt.Errorf("unhandled mutation args type %T", args)
}

// mutationTime picks the effective timestamp for a mutation: the client's
// timestamp when present, the server clock otherwise.
func mutationTime(m sync.Mutation, now time.Time) time.Time {
	if m.Timestamp.IsZero() {
		return now
	}
	return m.Timestamp
}
