package types

import (
	"encoding/json"
	"time"
)

// ItemState represents a user's relationship to a canonical item.
type ItemState string

const (
	StateInbox      ItemState = "INBOX"
	StateBookmarked ItemState = "BOOKMARKED"
	StateArchived   ItemState = "ARCHIVED"
)

// Valid reports whether the state is one of the known states.
func (s ItemState) Valid() bool {
	switch s {
	case StateInbox, StateBookmarked, StateArchived:
		return true
	}
	return false
}

// ContentType classifies a canonical item.
type ContentType string

const (
	ContentVideo   ContentType = "VIDEO"
	ContentPodcast ContentType = "PODCAST"
	ContentArticle ContentType = "ARTICLE"
	ContentPost    ContentType = "POST"
)

// Item represents one piece of content with a shared identity across a
// provider. Immutable after creation except for metadata backfill.
type Item struct {
	ID              string      `json:"id"`
	ContentType     ContentType `json:"contentType"`
	Provider        string      `json:"provider"`
	ProviderItemID  string      `json:"providerItemId"`
	URL             string      `json:"url,omitempty"`
	Title           string      `json:"title,omitempty"`
	Creator         string      `json:"creator,omitempty"`
	ThumbnailURL    string      `json:"thumbnailUrl,omitempty"`
	DurationSeconds int64       `json:"durationSeconds,omitempty"`
	PublishedAt     *time.Time  `json:"publishedAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// UserItem tracks the user's per-item state and its transition timestamps.
type UserItem struct {
	ID           string     `json:"id"`
	ItemID       string     `json:"itemId"`
	State        ItemState  `json:"state"`
	IngestedAt   *time.Time `json:"ingestedAt,omitempty"`
	BookmarkedAt *time.Time `json:"bookmarkedAt,omitempty"`
	ArchivedAt   *time.Time `json:"archivedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Source is a subscribed external feed or channel owned by the user.
type Source struct {
	ID               string          `json:"id"`
	Provider         string          `json:"provider"`
	ProviderSourceID string          `json:"providerSourceId"`
	Name             string          `json:"name,omitempty"`
	Config           json.RawMessage `json:"config,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Profile holds the optional account profile stored alongside the user's data.
type Profile struct {
	UserID     string    `json:"id,omitempty"`
	Email      string    `json:"email,omitempty"`
	GivenName  string    `json:"givenName,omitempty"`
	FamilyName string    `json:"familyName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IngestCandidate is one externally fetched content item offered to the
// ingestion handler. Provider clients produce these; the actor only consumes.
type IngestCandidate struct {
	ProviderItemID  string      `json:"providerItemId"`
	ContentType     ContentType `json:"contentType"`
	URL             string      `json:"url,omitempty"`
	Title           string      `json:"title,omitempty"`
	Creator         string      `json:"creator,omitempty"`
	ThumbnailURL    string      `json:"thumbnailUrl,omitempty"`
	DurationSeconds int64       `json:"durationSeconds,omitempty"`
	PublishedAt     *time.Time  `json:"publishedAt,omitempty"`
}

// IngestResult reports the outcome of one ingestion batch. Per-candidate
// failures are collected in Errors rather than aborting the batch.
type IngestResult struct {
	Ingested int      `json:"ingested"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// SyncClient is the replay-protection record for one logical sync client.
type SyncClient struct {
	ClientKey      string    `json:"clientKey"`
	ClientGroupID  string    `json:"clientGroupId"`
	ClientID       string    `json:"clientId"`
	LastMutationID int64     `json:"lastMutationId"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	ActiveActors int    `json:"active_actors"`
}
