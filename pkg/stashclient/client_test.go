package stashclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperengineering/stash/internal/actor"
	"github.com/hyperengineering/stash/internal/api"
)

const testAPIKey = "client-test-key"

// newTestServer runs the real router against a temp-dir manager, so these
// tests exercise the full client-to-store path.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mgr, err := actor.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() {
		if err := mgr.Close(); err != nil {
			t.Errorf("manager close: %v", err)
		}
	})

	handler, err := api.NewHandler(mgr, testAPIKey, "test")
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, userID string) *Client {
	t.Helper()

	c, err := New(Config{
		BaseURL: srv.URL,
		APIKey:  testAPIKey,
		UserID:  userID,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RequiresBaseURLAndUser(t *testing.T) {
	if _, err := New(Config{UserID: "alice"}); err == nil {
		t.Error("expected error without BaseURL")
	}
	if _, err := New(Config{BaseURL: "http://localhost"}); err == nil {
		t.Error("expected error without UserID")
	}
}

func TestClient_Health(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, "alice")

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "healthy" {
		t.Errorf("status = %q, want healthy", h.Status)
	}
}

func TestClient_WrongAPIKey(t *testing.T) {
	srv := newTestServer(t)

	c, err := New(Config{BaseURL: srv.URL, APIKey: "wrong", UserID: "alice"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Profile(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
}

func TestClient_SyncRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, "alice")
	ctx := context.Background()

	init, err := c.Init(ctx, &ProfileParams{Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !init.Success || !init.ProfileUpdated {
		t.Fatalf("init = %+v, want success with profile update", init)
	}

	mut, err := c.NewMutation("addSource", map[string]any{
		"source": map[string]any{
			"id":               "src-1",
			"provider":         "youtube",
			"providerSourceId": "UC123",
			"name":             "Test Channel",
		},
	})
	if err != nil {
		t.Fatalf("NewMutation: %v", err)
	}
	if err := c.Push(ctx, []Mutation{mut}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	// Resending the same batch must be harmless.
	if err := c.Push(ctx, []Mutation{mut}); err != nil {
		t.Fatalf("Push replay: %v", err)
	}

	stats, err := c.Ingest(ctx, "src-1", []IngestItem{
		{ProviderItemID: "v1", ContentType: "VIDEO", Title: "First"},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if stats.Ingested != 1 {
		t.Errorf("ingested = %d, want 1", stats.Ingested)
	}

	pull, err := c.Pull(ctx, nil)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if len(pull.Patch) == 0 || pull.Patch[0].Op != "clear" {
		t.Fatalf("patch = %+v, want clear-first", pull.Patch)
	}
	if pull.LastMutationIDChanges[c.ClientID()] != mut.ID {
		t.Errorf("lastMutationIdChanges = %v, want %d for this client",
			pull.LastMutationIDChanges, mut.ID)
	}

	keys := make(map[string]bool, len(pull.Patch))
	for _, op := range pull.Patch[1:] {
		keys[op.Key] = true
	}
	if !keys["source/src-1"] {
		t.Error("pull is missing the pushed source")
	}

	found := false
	for key := range keys {
		if strings.HasPrefix(key, "userItem/") {
			found = true
		}
	}
	if !found {
		t.Error("pull is missing the ingested user item")
	}

	// A second pull with the fresh cookie stays consistent.
	again, err := c.Pull(ctx, &pull.Cookie)
	if err != nil {
		t.Fatalf("Pull with cookie: %v", err)
	}
	if again.Cookie.Version != pull.Cookie.Version {
		t.Errorf("version moved from %d to %d without writes",
			pull.Cookie.Version, again.Cookie.Version)
	}

	profile, err := c.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile == nil || profile.Email != "alice@example.com" {
		t.Errorf("profile = %+v, want stored email", profile)
	}
}

func TestClient_PushFailureSurfacesMutationError(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, "alice")

	mut, err := c.NewMutation("bookmarkItem", map[string]any{"userItemId": "missing"})
	if err != nil {
		t.Fatalf("NewMutation: %v", err)
	}

	err = c.Push(context.Background(), []Mutation{mut})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if !strings.Contains(apiErr.Detail, "mutation 1 failed") {
		t.Errorf("detail = %q, want mutation failure message", apiErr.Detail)
	}
}

func TestClient_Cleanup(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, "alice")
	ctx := context.Background()

	mut, err := c.NewMutation("addSource", map[string]any{
		"source": map[string]any{
			"id":               "src-1",
			"provider":         "rss",
			"providerSourceId": "feed-1",
		},
	})
	if err != nil {
		t.Fatalf("NewMutation: %v", err)
	}
	if err := c.Push(ctx, []Mutation{mut}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	res, err := c.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if !res.Success || len(res.TablesCleared) == 0 {
		t.Fatalf("cleanup = %+v, want success", res)
	}

	pull, err := c.Pull(ctx, nil)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if pull.Cookie.Version != 0 || len(pull.Patch) != 1 {
		t.Errorf("after cleanup: version = %d, patch = %+v, want empty state",
			pull.Cookie.Version, pull.Patch)
	}
}
