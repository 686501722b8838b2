package domain

import "errors"

// Generic sentinel errors shared by services and repositories.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("not authenticated")
	ErrInvalidInput = errors.New("invalid input")
)

// Group admission and creation failures. Each maps to its own user-facing message.
var (
	// ErrInvalidCodeFormat is returned when an invite code is not exactly 6 letters.
	ErrInvalidCodeFormat = errors.New("invite code must be 6 letters")
	// ErrGroupNotFound is returned when no group holds the given invite code.
	ErrGroupNotFound = errors.New("invalid group code")
	// ErrGroupFull is returned when the group already has MaxGroupMembers memberships.
	ErrGroupFull = errors.New("group is full (max 10 members)")
	// ErrDuplicateInviteCode is returned by the store when an invite code is already taken.
	ErrDuplicateInviteCode = errors.New("invite code already in use")
	// ErrInviteCodeCollision is returned when every generation attempt collided.
	ErrInviteCodeCollision = errors.New("failed to create group (invite code generation collision)")
	// ErrAlreadyMember is returned by the store when the (group, account) membership exists.
	ErrAlreadyMember = errors.New("already a member")
)
