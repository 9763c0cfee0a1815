// Package member contains the identity domain: who is registered and
// under what display name. Registration records are append-only and
// immutable; a handle registers at most once and the first name wins.
package member

import (
	"errors"
	"strings"
	"time"
)

// Handle is the stable per-user identifier supplied by the chat transport.
// It is opaque to the core: never parsed, only compared.
type Handle string

// IsValid checks that the handle is non-empty and has no whitespace.
func (h Handle) IsValid() bool {
	s := string(h)
	return len(s) > 0 && len(s) <= 64 && !strings.ContainsAny(s, " \t\n\r")
}

// String returns the string representation of the handle.
func (h Handle) String() string {
	return string(h)
}

// Member is a registered community member.
type Member struct {
	// Handle is the transport-level identifier. Unique key.
	Handle Handle

	// DisplayName is the real full name supplied during registration.
	// Immutable after registration.
	DisplayName string

	// RegisteredAt is when the registration was acknowledged.
	RegisteredAt time.Time
}

var (
	// ErrInvalidHandle - handle is empty or contains whitespace.
	ErrInvalidHandle = errors.New("invalid handle: must be 1-64 chars without whitespace")

	// ErrInvalidDisplayName - display name is empty or too long.
	ErrInvalidDisplayName = errors.New("invalid display name: must be 1-100 chars")
)

// NewMember creates a member with validation. DisplayName is trimmed.
func NewMember(handle Handle, displayName string, at time.Time) (*Member, error) {
	if !handle.IsValid() {
		return nil, ErrInvalidHandle
	}

	displayName = strings.TrimSpace(displayName)
	if len(displayName) == 0 || len(displayName) > 100 {
		return nil, ErrInvalidDisplayName
	}

	return &Member{
		Handle:       handle,
		DisplayName:  displayName,
		RegisteredAt: at.UTC(),
	}, nil
}
