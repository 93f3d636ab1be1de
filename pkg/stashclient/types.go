// Package stashclient is a Go client for the stash sync API. It mirrors the
// wire protocol with its own types so importers do not depend on server
// internals.
package stashclient

import (
	"encoding/json"
	"time"
)

// Mutation is one client-originated state change.
type Mutation struct {
	ID        int64           `json:"id"`
	ClientID  string          `json:"clientId"`
	Name      string          `json:"name"`
	Args      json.RawMessage `json:"args"`
	Timestamp time.Time       `json:"timestamp"`
}

// Cookie is the sync cursor returned by pull.
type Cookie struct {
	Version       int64 `json:"version"`
	SchemaVersion int64 `json:"schemaVersion"`
}

// PatchOp is one entry in a pull patch.
type PatchOp struct {
	Op    string          `json:"op"`
	Key   string          `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// PullResult is the server's answer to a pull.
type PullResult struct {
	Cookie                Cookie           `json:"cookie"`
	LastMutationIDChanges map[string]int64 `json:"lastMutationIdChanges"`
	Patch                 []PatchOp        `json:"patch"`
}

// IngestItem is one externally fetched content candidate.
type IngestItem struct {
	ProviderItemID  string     `json:"providerItemId"`
	ContentType     string     `json:"contentType"`
	URL             string     `json:"url,omitempty"`
	Title           string     `json:"title,omitempty"`
	Creator         string     `json:"creator,omitempty"`
	ThumbnailURL    string     `json:"thumbnailUrl,omitempty"`
	DurationSeconds int64      `json:"durationSeconds,omitempty"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
}

// IngestStats reports the outcome of one ingestion batch.
type IngestStats struct {
	Ingested int      `json:"ingested"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// ProfileParams are the optional profile fields sent with init.
type ProfileParams struct {
	ID         string     `json:"id,omitempty"`
	Email      string     `json:"email,omitempty"`
	GivenName  string     `json:"givenName,omitempty"`
	FamilyName string     `json:"familyName,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// InitResult reports schema state after initialization.
type InitResult struct {
	Success           bool     `json:"success"`
	SchemaVersion     int64    `json:"schemaVersion"`
	MigrationsApplied []string `json:"migrationsApplied"`
	ProfileUpdated    bool     `json:"profileUpdated"`
}

// CleanupResult reports which tables were erased.
type CleanupResult struct {
	Success       bool     `json:"success"`
	TablesCleared []string `json:"tablesCleared"`
}

// Profile is the stored account profile.
type Profile struct {
	UserID     string    `json:"id,omitempty"`
	Email      string    `json:"email,omitempty"`
	GivenName  string    `json:"givenName,omitempty"`
	FamilyName string    `json:"familyName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Health is the server's health report.
type Health struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	ActiveActors int    `json:"active_actors"`
}
