package sync

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperengineering/stash/internal/types"
)

// ErrUnknownMutation marks a mutation name this server version does not
// recognize. Callers treat it as a deliberate soft-fail so newer clients can
// sync against older servers.
var ErrUnknownMutation = errors.New("unknown mutation")

// Mutation names.
const (
	MutationBookmarkItem        = "bookmarkItem"
	MutationArchiveItem         = "archiveItem"
	MutationUpdateUserItemState = "updateUserItemState"
	MutationAddSource           = "addSource"
	MutationRemoveSource        = "removeSource"
)

// MutationArgs is the closed set of decoded mutation arguments. Exactly one
// concrete type exists per mutation name; dispatching on the concrete type is
// exhaustive by construction.
type MutationArgs interface {
	mutationArgs()
}

// BookmarkItemArgs moves a user item to BOOKMARKED.
type BookmarkItemArgs struct {
	UserItemID string `json:"userItemId"`
}

// ArchiveItemArgs moves a user item to ARCHIVED.
type ArchiveItemArgs struct {
	UserItemID string `json:"userItemId"`
}

// UpdateUserItemStateArgs sets an explicit state. The matching transition
// timestamp is only written if it was never set before.
type UpdateUserItemStateArgs struct {
	UserItemID string          `json:"userItemId"`
	State      types.ItemState `json:"state"`
}

// AddSourceArgs upserts a subscribed source by its ID.
type AddSourceArgs struct {
	Source types.Source `json:"source"`
}

// RemoveSourceArgs deletes a subscribed source.
type RemoveSourceArgs struct {
	SourceID string `json:"sourceId"`
}

func (BookmarkItemArgs) mutationArgs()        {}
func (ArchiveItemArgs) mutationArgs()         {}
func (UpdateUserItemStateArgs) mutationArgs() {}
func (AddSourceArgs) mutationArgs()           {}
func (RemoveSourceArgs) mutationArgs()        {}

// DecodeArgs parses the raw argument payload for the named mutation into its
// typed form. Unknown names return ErrUnknownMutation; malformed payloads for
// known names are hard errors.
func DecodeArgs(name string, raw json.RawMessage) (MutationArgs, error) {
	switch name {
	case MutationBookmarkItem:
		var args BookmarkItemArgs
		if err := decodeInto(raw, &args); err != nil {
			return nil, err
		}
		if args.UserItemID == "" {
			return nil, fmt.Errorf("%s: userItemId is required", name)
		}
		return args, nil

	case MutationArchiveItem:
		var args ArchiveItemArgs
		if err := decodeInto(raw, &args); err != nil {
			return nil, err
		}
		if args.UserItemID == "" {
			return nil, fmt.Errorf("%s: userItemId is required", name)
		}
		return args, nil

	case MutationUpdateUserItemState:
		var args UpdateUserItemStateArgs
		if err := decodeInto(raw, &args); err != nil {
			return nil, err
		}
		if args.UserItemID == "" {
			return nil, fmt.Errorf("%s: userItemId is required", name)
		}
		if !args.State.Valid() {
			return nil, fmt.Errorf("%s: invalid state %q", name, args.State)
		}
		return args, nil

	case MutationAddSource:
		var args AddSourceArgs
		if err := decodeInto(raw, &args); err != nil {
			return nil, err
		}
		if args.Source.ID == "" {
			return nil, fmt.Errorf("%s: source.id is required", name)
		}
		return args, nil

	case MutationRemoveSource:
		var args RemoveSourceArgs
		if err := decodeInto(raw, &args); err != nil {
			return nil, err
		}
		if args.SourceID == "" {
			return nil, fmt.Errorf("%s: sourceId is required", name)
		}
		return args, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownMutation, name)
}

func decodeInto(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing args payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}

// ClientKey derives the durable replay-protection key for a logical client.
func ClientKey(clientGroupID, clientID string) string {
	return clientGroupID + "/" + clientID
}
