package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/stash/internal/store"
	"github.com/hyperengineering/stash/internal/sync"
)

// handlePush applies a client mutation batch. The whole batch plus the
// version bump runs in one transaction: a mid-batch failure leaves no partial
// writes. Replayed mutations (sequence <= last applied) are skipped, which
// makes resubmitting a batch safe.
func (a *Actor) handlePush(ctx context.Context, req sync.PushRequest) error {
	start := time.Now()

	if len(req.Mutations) == 0 {
		slog.Info("push empty",
			"component", "actor",
			"action", "push",
			"user_id", a.userID,
			"client_group_id", req.ClientGroupID,
		)
		return nil
	}

	tx, err := a.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	applied, skipped := 0, 0

	for i := range req.Mutations {
		m := req.Mutations[i]
		clientKey := sync.ClientKey(req.ClientGroupID, m.ClientID)

		last, err := store.LastMutationID(ctx, tx, clientKey)
		if err != nil {
			return err
		}
		if m.ID <= last {
			skipped++
			continue
		}

		args, err := sync.DecodeArgs(m.Name, m.Args)
		switch {
		case errors.Is(err, sync.ErrUnknownMutation):
			// Newer clients may send mutation kinds this server does not
			// know yet. Skip them, but still advance the replay guard so
			// the client prunes its outgoing queue.
			slog.Warn("unknown mutation skipped",
				"component", "actor",
				"action", "push_unknown_mutation",
				"user_id", a.userID,
				"mutation_id", m.ID,
				"name", m.Name,
			)
		case err != nil:
			return &MutationError{MutationID: m.ID, Err: err}
		default:
			if err := applyMutation(ctx, tx, args, mutationTime(m, now)); err != nil {
				return &MutationError{MutationID: m.ID, Err: err}
			}
			applied++
		}

		if err := store.SetLastMutationID(ctx, tx, req.ClientGroupID, m.ClientID, m.ID, now); err != nil {
			return err
		}
	}

	// One bump per push call, even when every mutation was a replay. The
	// version cursor is call-granular, not mutation-granular.
	version, err := store.BumpVersion(ctx, tx)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("push applied",
		"component", "actor",
		"action", "push",
		"user_id", a.userID,
		"client_group_id", req.ClientGroupID,
		"mutations", len(req.Mutations),
		"applied", applied,
		"skipped", skipped,
		"version", version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
