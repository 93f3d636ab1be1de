package store

import (
	"context"
	"testing"
	"time"
)

func TestClients_LastMutationIDDefaultsToZero(t *testing.T) {
	s := newTestStore(t)

	last, err := LastMutationID(context.Background(), s.DB(), "group-a/client-1")
	if err != nil {
		t.Fatalf("LastMutationID: %v", err)
	}
	if last != 0 {
		t.Errorf("expected 0 for unknown client, got %d", last)
	}
}

func TestClients_SetAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := SetLastMutationID(ctx, s.DB(), "group-a", "client-1", 3, now); err != nil {
		t.Fatalf("SetLastMutationID: %v", err)
	}
	if err := SetLastMutationID(ctx, s.DB(), "group-a", "client-2", 7, now); err != nil {
		t.Fatalf("SetLastMutationID: %v", err)
	}
	if err := SetLastMutationID(ctx, s.DB(), "group-b", "client-9", 1, now); err != nil {
		t.Fatalf("SetLastMutationID: %v", err)
	}

	last, err := LastMutationID(ctx, s.DB(), "group-a/client-1")
	if err != nil {
		t.Fatalf("LastMutationID: %v", err)
	}
	if last != 3 {
		t.Errorf("expected 3, got %d", last)
	}

	clients, err := ListGroupClients(ctx, s.DB(), "group-a")
	if err != nil {
		t.Fatalf("ListGroupClients: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients in group-a, got %d", len(clients))
	}
	if clients[0].ClientID != "client-1" || clients[1].ClientID != "client-2" {
		t.Errorf("unexpected client ordering: %s, %s", clients[0].ClientID, clients[1].ClientID)
	}
}

func TestClients_LastMutationIDNeverDecreases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := SetLastMutationID(ctx, s.DB(), "group-a", "client-1", 5, now); err != nil {
		t.Fatalf("SetLastMutationID: %v", err)
	}
	if err := SetLastMutationID(ctx, s.DB(), "group-a", "client-1", 3, now); err != nil {
		t.Fatalf("SetLastMutationID: %v", err)
	}

	last, err := LastMutationID(ctx, s.DB(), "group-a/client-1")
	if err != nil {
		t.Fatalf("LastMutationID: %v", err)
	}
	if last != 5 {
		t.Errorf("expected last mutation id to stay at 5, got %d", last)
	}
}
