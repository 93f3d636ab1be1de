// Package actor hosts the per-user synchronization engine. Each user is
// bound to exactly one Actor owning an embedded SQLite store; a mailbox
// goroutine executes handler calls one at a time, so handlers see exclusive
// store access without locks.
package actor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hyperengineering/stash/internal/store"
	"github.com/hyperengineering/stash/internal/sync"
	"github.com/hyperengineering/stash/internal/types"
)

// ErrActorClosed is returned for calls made after the actor shut down.
var ErrActorClosed = errors.New("actor closed")

// Actor is the single writer for one user's store.
type Actor struct {
	userID string
	store  *store.SQLiteStore

	calls chan func()
	quit  chan struct{}
	done  chan struct{}
}

// newActor wraps an opened store and starts the mailbox loop. Opening the
// store already brought the schema up to date, so by the time any handler
// runs, initialization is complete for this actor's lifetime.
func newActor(userID string, s *store.SQLiteStore) *Actor {
	a := &Actor{
		userID: userID,
		store:  s,
		calls:  make(chan func()),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *Actor) loop() {
	defer close(a.done)
	for {
		select {
		case fn := <-a.calls:
			fn()
		case <-a.quit:
			return
		}
	}
}

// do enqueues fn into the mailbox and waits for it to finish. Enqueueing
// respects ctx cancellation; once a handler starts it runs to completion
// (cancellation still propagates into its store operations via ctx).
func (a *Actor) do(ctx context.Context, fn func(context.Context) error) error {
	result := make(chan error, 1)
	job := func() { result <- fn(ctx) }

	select {
	case a.calls <- job:
	case <-a.quit:
		return ErrActorClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-result
}

// close stops the mailbox and closes the store. Pending callers that did not
// enqueue before shutdown receive ErrActorClosed.
func (a *Actor) close() error {
	close(a.quit)
	<-a.done

	if err := a.store.Close(); err != nil {
		slog.Warn("store close failed",
			"component", "actor",
			"user_id", a.userID,
			"error", err,
		)
		return err
	}
	return nil
}

// Init reports schema state and optionally stores profile fields.
func (a *Actor) Init(ctx context.Context, req *sync.InitRequest) (*sync.InitResponse, error) {
	var resp *sync.InitResponse
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = a.handleInit(ctx, req)
		return err
	})
	return resp, err
}

// Push applies an ordered mutation batch exactly once per mutation.
func (a *Actor) Push(ctx context.Context, req sync.PushRequest) error {
	return a.do(ctx, func(ctx context.Context) error {
		return a.handlePush(ctx, req)
	})
}

// Pull returns the current state snapshot and a fresh sync cookie.
func (a *Actor) Pull(ctx context.Context, req sync.PullRequest) (*sync.PullResponse, error) {
	var resp *sync.PullResponse
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = a.handlePull(ctx, req)
		return err
	})
	return resp, err
}

// Ingest stores deduplicated feed content for one subscribed source.
func (a *Actor) Ingest(ctx context.Context, req sync.IngestRequest) (*types.IngestResult, error) {
	var result *types.IngestResult
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		result, err = a.handleIngest(ctx, req)
		return err
	})
	return result, err
}

// Cleanup erases all of this user's data.
func (a *Actor) Cleanup(ctx context.Context) (*sync.CleanupResponse, error) {
	var resp *sync.CleanupResponse
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = a.handleCleanup(ctx)
		return err
	})
	return resp, err
}

// Profile reads the stored account profile, if any.
func (a *Actor) Profile(ctx context.Context) (*sync.ProfileResponse, error) {
	var resp *sync.ProfileResponse
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = a.handleProfile(ctx)
		return err
	})
	return resp, err
}
