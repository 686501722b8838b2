package domain

import (
	"context"
	"time"
)

const (
	// MaxGroupMembers is the membership cap enforced when an account joins by code.
	MaxGroupMembers = 10
	// InviteCodeLength is the number of uppercase letters in an invite code.
	InviteCodeLength = 6
)

// Role is a member's role inside a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Group is a set of accounts sharing a calendar, joinable with its invite code.
// swagger:model Group
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     string    `json:"owner_id"`
	InviteCode  string    `json:"invite_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewGroup returns a new Group. ID and InviteCode are set on create.
func NewGroup(name string, description *string, ownerID string, createdAt time.Time) *Group {
	return &Group{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   createdAt,
	}
}

// Membership relates one account to one group.
// swagger:model Membership
type Membership struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	AccountID string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMembership returns a new Membership. ID is typically set by the repository on create.
func NewMembership(groupID, accountID string, role Role, createdAt time.Time) *Membership {
	return &Membership{
		GroupID:   groupID,
		AccountID: accountID,
		Role:      role,
		CreatedAt: createdAt,
	}
}

// GroupWithRole bundles a group with the caller's role in it.
type GroupWithRole struct {
	Group *Group `json:"group"`
	Role  Role   `json:"role"`
}

// GroupRepository defines storage for groups.
type GroupRepository interface {
	// Create inserts the group; it returns ErrDuplicateInviteCode when the code is taken.
	Create(ctx context.Context, group *Group) error
	GetByID(ctx context.Context, id string) (*Group, error)
	GetByInviteCode(ctx context.Context, code string) (*Group, error)
}

// MembershipRepository defines storage for group memberships.
type MembershipRepository interface {
	// Create inserts the membership; it returns ErrAlreadyMember on a duplicate (group, account).
	Create(ctx context.Context, m *Membership) error
	Get(ctx context.Context, groupID, accountID string) (*Membership, error)
	CountByGroupID(ctx context.Context, groupID string) (int, error)
	ListByAccountID(ctx context.Context, accountID string) ([]*GroupWithRole, error)
}

// InvitationResult reports how an invitation e-mail was handed off.
type InvitationResult struct {
	Email      string `json:"email"`
	InviteCode string `json:"invite_code"`
	AcceptURL  string `json:"accept_url"`
	Warning    string `json:"warning,omitempty"`
}

// GroupService covers group creation, admission by invite code and group calendars.
type GroupService interface {
	CreateGroup(ctx context.Context, ownerID, name, description string) (*Group, error)
	// JoinGroup admits accountID to the group holding code. created is false when the
	// account was already a member and the existing membership is returned.
	JoinGroup(ctx context.Context, code, accountID string) (m *Membership, created bool, err error)
	ListMyGroups(ctx context.Context, accountID string) ([]*GroupWithRole, error)
	GetGroup(ctx context.Context, groupID, accountID string) (*Group, error)
	ListGroupEvents(ctx context.Context, groupID, accountID string) ([]*Event, error)
	InviteByEmail(ctx context.Context, groupID, inviterID, email string) (*InvitationResult, error)
}
