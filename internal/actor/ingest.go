package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/stash/internal/store"
	"github.com/hyperengineering/stash/internal/sync"
	"github.com/hyperengineering/stash/internal/types"
)

// handleIngest stores a batch of externally fetched candidates for one
// source. An unknown source aborts the whole batch; individual candidate
// failures are collected and the batch continues (partial success is the
// contract here, unlike push). Each accepted candidate's writes run in their
// own small transaction.
func (a *Actor) handleIngest(ctx context.Context, req sync.IngestRequest) (*types.IngestResult, error) {
	start := time.Now()
	db := a.store.DB()

	source, err := store.GetSource(ctx, db, req.SourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", store.ErrSourceNotFound, req.SourceID)
		}
		return nil, err
	}

	now := time.Now().UTC()
	result := &types.IngestResult{Errors: []string{}}

	for i := range req.Items {
		candidate := req.Items[i]
		if candidate.ProviderItemID == "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("item %d: providerItemId is required", i))
			continue
		}

		seen, err := store.HasSeenMark(ctx, db, source.ID, candidate.ProviderItemID)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %v", candidate.ProviderItemID, err))
			continue
		}
		if seen {
			result.Skipped++
			continue
		}

		if err := a.ingestOne(ctx, source, candidate, now); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %v", candidate.ProviderItemID, err))
			continue
		}
		result.Ingested++
	}

	// The version cursor is call-granular: one bump per ingestion batch,
	// including batches where everything was skipped.
	version, err := store.BumpVersion(ctx, db)
	if err != nil {
		return nil, err
	}

	slog.Info("ingest completed",
		"component", "actor",
		"action", "ingest",
		"user_id", a.userID,
		"source_id", source.ID,
		"candidates", len(req.Items),
		"ingested", result.Ingested,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"version", version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// ingestOne creates the canonical item (reusing an existing one when another
// source already delivered the same provider identity), the user item in
// INBOX state, and the seen mark, atomically.
func (a *Actor) ingestOne(ctx context.Context, source *types.Source, candidate types.IngestCandidate, now time.Time) error {
	tx, err := a.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := store.GetItemByProviderID(ctx, tx, source.Provider, candidate.ProviderItemID)
	if errors.Is(err, store.ErrNotFound) {
		item, err = store.CreateItem(ctx, tx, candidate, source.Provider, now)
	}
	if err != nil {
		return err
	}

	_, err = store.GetUserItemByItemID(ctx, tx, item.ID)
	if errors.Is(err, store.ErrNotFound) {
		_, err = store.CreateUserItem(ctx, tx, item.ID, types.StateInbox, now)
	}
	if err != nil {
		return err
	}

	if err := store.CreateSeenMark(ctx, tx, source.ID, candidate.ProviderItemID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
