package actor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hyperengineering/stash/internal/store"
	"github.com/hyperengineering/stash/internal/sync"
	"github.com/hyperengineering/stash/internal/types"
)

// handleInit reports schema state and optionally stores the caller-supplied
// profile fields. Migrations already ran when the actor's store was opened,
// so init only surfaces what happened.
func (a *Actor) handleInit(ctx context.Context, req *sync.InitRequest) (*sync.InitResponse, error) {
	schemaVersion, err := a.store.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}

	applied := a.store.AppliedMigrations()
	if applied == nil {
		applied = []string{}
	}

	profileUpdated := false
	if req != nil && hasProfileFields(req) {
		profile := types.Profile{
			UserID:     req.ID,
			Email:      req.Email,
			GivenName:  req.GivenName,
			FamilyName: req.FamilyName,
		}
		if req.CreatedAt != nil {
			profile.CreatedAt = *req.CreatedAt
		}
		if err := store.UpsertProfile(ctx, a.store.DB(), profile, time.Now().UTC()); err != nil {
			return nil, err
		}
		profileUpdated = true
	}

	slog.Info("actor initialized",
		"component", "actor",
		"action", "init",
		"user_id", a.userID,
		"schema_version", schemaVersion,
		"migrations_applied", len(applied),
		"profile_updated", profileUpdated,
	)

	return &sync.InitResponse{
		Success:           true,
		SchemaVersion:     schemaVersion,
		MigrationsApplied: applied,
		ProfileUpdated:    profileUpdated,
	}, nil
}

func hasProfileFields(req *sync.InitRequest) bool {
	return req.ID != "" || req.Email != "" || req.GivenName != "" || req.FamilyName != ""
}

// handleCleanup erases every user-owned table and resets the version counter.
func (a *Actor) handleCleanup(ctx context.Context) (*sync.CleanupResponse, error) {
	cleared, err := a.store.Cleanup(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("user data erased",
		"component", "actor",
		"action", "cleanup",
		"user_id", a.userID,
		"tables_cleared", len(cleared),
	)

	return &sync.CleanupResponse{Success: true, TablesCleared: cleared}, nil
}

// handleProfile reads the stored profile; a never-set profile reads as null.
func (a *Actor) handleProfile(ctx context.Context) (*sync.ProfileResponse, error) {
	profile, err := store.GetProfile(ctx, a.store.DB())
	if errors.Is(err, store.ErrNotFound) {
		return &sync.ProfileResponse{Profile: nil}, nil
	}
	if err != nil {
		return nil, err
	}
	return &sync.ProfileResponse{Profile: profile}, nil
}
