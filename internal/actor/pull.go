package actor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/stash/internal/store"
	"github.com/hyperengineering/stash/internal/sync"
)

// handlePull returns the full current state as a patch plus a fresh cookie.
// Every pull is a full resync: a clear operation followed by an upsert for
// every stored entity. Incremental diffing from a prior cookie is
// deliberately not implemented; the cookie still gates client-side cache
// reuse on schema changes.
func (a *Actor) handlePull(ctx context.Context, req sync.PullRequest) (*sync.PullResponse, error) {
	start := time.Now()
	db := a.store.DB()

	version, err := store.Version(ctx, db)
	if err != nil {
		return nil, err
	}
	schemaVersion, err := a.store.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}

	reason := resyncReason(req.Cookie, schemaVersion)

	clients, err := store.ListGroupClients(ctx, db, req.ClientGroupID)
	if err != nil {
		return nil, err
	}
	changes := make(map[string]int64, len(clients))
	for _, client := range clients {
		changes[client.ClientID] = client.LastMutationID
	}

	patch, err := a.buildSnapshotPatch(ctx)
	if err != nil {
		return nil, err
	}

	resp := &sync.PullResponse{
		Cookie: sync.Cookie{
			Version:       version,
			SchemaVersion: schemaVersion,
		},
		LastMutationIDChanges: changes,
		Patch:                 patch,
	}

	slog.Info("pull served",
		"component", "actor",
		"action", "pull",
		"user_id", a.userID,
		"client_group_id", req.ClientGroupID,
		"resync_reason", reason,
		"patch_ops", len(patch),
		"version", version,
		"schema_version", schemaVersion,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// resyncReason names why this pull is a full resync, for diagnostics.
func resyncReason(cookie *sync.Cookie, schemaVersion int64) string {
	switch {
	case cookie == nil:
		return "no_cookie"
	case cookie.SchemaVersion != schemaVersion:
		return "schema_changed"
	case cookie.Version == 0:
		return "zero_version"
	default:
		return "full_resync_baseline"
	}
}

// buildSnapshotPatch emits a clear op followed by a put for every canonical
// item, user item, and source, in stable ID order within each entity kind.
func (a *Actor) buildSnapshotPatch(ctx context.Context) ([]sync.PatchOp, error) {
	db := a.store.DB()
	patch := []sync.PatchOp{{Op: sync.OpClear}}

	items, err := store.ListItems(ctx, db)
	if err != nil {
		return nil, err
	}
	for i := range items {
		op, err := putOp(sync.KeyPrefixItem+items[i].ID, items[i])
		if err != nil {
			return nil, err
		}
		patch = append(patch, op)
	}

	userItems, err := store.ListUserItems(ctx, db)
	if err != nil {
		return nil, err
	}
	for i := range userItems {
		op, err := putOp(sync.KeyPrefixUserItem+userItems[i].ID, userItems[i])
		if err != nil {
			return nil, err
		}
		patch = append(patch, op)
	}

	sources, err := store.ListSources(ctx, db)
	if err != nil {
		return nil, err
	}
	for i := range sources {
		op, err := putOp(sync.KeyPrefixSource+sources[i].ID, sources[i])
		if err != nil {
			return nil, err
		}
		patch = append(patch, op)
	}

	return patch, nil
}

func putOp(key string, value any) (sync.PatchOp, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return sync.PatchOp{}, fmt.Errorf("encode patch value for %s: %w", key, err)
	}
	return sync.PatchOp{Op: sync.OpPut, Key: key, Value: encoded}, nil
}
