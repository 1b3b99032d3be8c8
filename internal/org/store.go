package org

import (
	"context"

	"crewbase.io/internal/auth"
)

// Store describes persistence for organizations and memberships. Reads of
// the owner count and the subsequent delete happen per request against the
// backing store's row-level atomicity; no in-process locking is assumed.
type Store interface {
	Create(ctx context.Context, o *Organization, owner *Member) error
	Find(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context) ([]*Organization, error)
	Update(ctx context.Context, id string, upd Update) (*Organization, error)
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, m *Member) error
	FindMember(ctx context.Context, orgID, userID string) (*Member, error)
	ListMembers(ctx context.Context, orgID string) ([]MemberDetail, error)
	UpdateMemberRole(ctx context.Context, orgID, userID string, role auth.OrgRole) error
	RemoveMember(ctx context.Context, orgID, userID string) error
	CountOwners(ctx context.Context, orgID string) (int, error)
}

// UserDirectory is the slice of the user directory the organization service
// needs: resolving invitees and owners. auth.UserStore satisfies it.
type UserDirectory interface {
	Find(ctx context.Context, id string) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
}
