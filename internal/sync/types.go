// Package sync defines the wire protocol shared by the push, pull, and
// ingestion handlers: mutation envelopes, sync cookies, and patch operations.
package sync

import (
	"encoding/json"
	"time"

	"github.com/hyperengineering/stash/internal/types"
)

// Mutation is one client-originated state change. ID is a strictly
// increasing sequence number scoped to the originating logical client.
type Mutation struct {
	ID        int64           `json:"id"`
	ClientID  string          `json:"clientId"`
	Name      string          `json:"name"`
	Args      json.RawMessage `json:"args"`
	Timestamp time.Time       `json:"timestamp"`
}

// PushRequest carries an ordered batch of mutations from one client group.
type PushRequest struct {
	ClientGroupID string     `json:"clientGroupId"`
	Mutations     []Mutation `json:"mutations"`
}

// PushResponse is intentionally empty on success; failures are reported as
// problem responses at the HTTP boundary.
type PushResponse struct{}

// Cookie is the client's sync cursor: the version counter value it last saw
// and the schema version that value was computed under.
type Cookie struct {
	Version       int64 `json:"version"`
	SchemaVersion int64 `json:"schemaVersion"`
}

// PullRequest asks for the state visible beyond the client's cookie.
// A nil cookie requests a full resync.
type PullRequest struct {
	ClientGroupID string  `json:"clientGroupId"`
	Cookie        *Cookie `json:"cookie"`
}

// Patch operation kinds.
const (
	OpClear = "clear"
	OpPut   = "put"
)

// PatchOp is one entry in a pull patch: either a clear-all marker or an
// upsert of a keyed value.
type PatchOp struct {
	Op    string          `json:"op"`
	Key   string          `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// PullResponse returns the new cookie, the last-applied mutation ID for every
// client in the group, and the state patch.
type PullResponse struct {
	Cookie                Cookie           `json:"cookie"`
	LastMutationIDChanges map[string]int64 `json:"lastMutationIdChanges"`
	Patch                 []PatchOp        `json:"patch"`
}

// IngestRequest offers a batch of externally fetched candidates for one
// subscribed source.
type IngestRequest struct {
	SourceID string                  `json:"sourceId"`
	Items    []types.IngestCandidate `json:"items"`
}

// InitRequest carries optional profile fields supplied at account setup.
type InitRequest struct {
	ID         string     `json:"id,omitempty"`
	Email      string     `json:"email,omitempty"`
	GivenName  string     `json:"givenName,omitempty"`
	FamilyName string     `json:"familyName,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// InitResponse reports schema state after initialization.
type InitResponse struct {
	Success           bool     `json:"success"`
	SchemaVersion     int64    `json:"schemaVersion"`
	MigrationsApplied []string `json:"migrationsApplied"`
	ProfileUpdated    bool     `json:"profileUpdated,omitempty"`
}

// CleanupResponse reports which tables were erased.
type CleanupResponse struct {
	Success       bool     `json:"success"`
	TablesCleared []string `json:"tablesCleared"`
}

// ProfileResponse wraps the stored profile, or null if none was ever set.
type ProfileResponse struct {
	Profile *types.Profile `json:"profile"`
}

// Patch key prefixes. Keys are "<prefix>/<entity id>".
const (
	KeyPrefixItem     = "item/"
	KeyPrefixUserItem = "userItem/"
	KeyPrefixSource   = "source/"
)
