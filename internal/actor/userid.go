package actor

import (
	"errors"
	"fmt"
	"regexp"
)

// MaxUserIDLength is the maximum length of a user ID.
const MaxUserIDLength = 128

// ErrInvalidUserID indicates a user ID failed validation.
var ErrInvalidUserID = errors.New("invalid user ID")

// User IDs become filesystem directory names, so the format is restricted to
// a single path-safe segment.
var userIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]*[a-zA-Z0-9])?$`)

// ValidateUserID validates a caller-supplied user ID against format rules.
func ValidateUserID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty user ID", ErrInvalidUserID)
	}
	if len(id) > MaxUserIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidUserID, MaxUserIDLength)
	}
	if !userIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q (must be alphanumeric with interior hyphens or underscores)",
			ErrInvalidUserID, id)
	}
	return nil
}
