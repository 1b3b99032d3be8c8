package org

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"crewbase.io/internal/auth"
	"crewbase.io/internal/ids"
)

// Service implements organization and membership operations, including the
// ownership invariants: an owner's role is immutable, and the last owner of
// an organization cannot be removed.
type Service struct {
	store Store
	users UserDirectory
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the organization service.
func NewService(store Store, users UserDirectory, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("org: store is required")
	}
	if users == nil {
		return nil, errors.New("org: user directory is required")
	}
	svc := &Service{store: store, users: users, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateInput carries the fields accepted when creating an organization.
type CreateInput struct {
	Name        string
	Description string
	OwnerID     string
}

// Create persists a new organization and auto-enrolls the owner as a member
// with the owner role.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name is required", auth.ErrInvalidInput)
	}
	owner, err := s.users.Find(ctx, input.OwnerID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, fmt.Errorf("%w: owner %s not found", auth.ErrInvalidInput, input.OwnerID)
		}
		return nil, err
	}
	now := s.now().UTC()
	o := &Organization{
		ID:          ids.New(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	enrollment := &Member{
		ID:             ids.New(),
		OrganizationID: o.ID,
		UserID:         owner.ID,
		Role:           auth.OrgRoleOwner,
		JoinedAt:       now,
	}
	if err := s.store.Create(ctx, o, enrollment); err != nil {
		return nil, err
	}
	return o, nil
}

// Get loads an organization with its members via an explicit join.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	o, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Organization: *o, Members: members}, nil
}

// List returns all organizations.
func (s *Service) List(ctx context.Context) ([]*Organization, error) {
	return s.store.List(ctx)
}

// Update applies the mutable organization fields.
func (s *Service) Update(ctx context.Context, id string, upd Update) (*Organization, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: organization name is required", auth.ErrInvalidInput)
		}
		upd.Name = &trimmed
	}
	if upd.Description != nil {
		trimmed := strings.TrimSpace(*upd.Description)
		upd.Description = &trimmed
	}
	return s.store.Update(ctx, id, upd)
}

// Delete removes the organization and its memberships.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// InviteMember enrolls the user with the given email. Inviting a user who
// is already a member violates the membership uniqueness invariant.
func (s *Service) InviteMember(ctx context.Context, orgID, email string, role auth.OrgRole) (*Member, error) {
	if _, err := s.store.Find(ctx, orgID); err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = auth.OrgRoleMember
	}
	if _, ok := auth.ParseOrgRole(string(role)); !ok {
		return nil, fmt.Errorf("%w: unknown membership role %q", auth.ErrInvalidInput, role)
	}
	if _, err := s.store.FindMember(ctx, orgID, user.ID); err == nil {
		return nil, fmt.Errorf("%w: user is already a member", auth.ErrInvalidInput)
	} else if !errors.Is(err, auth.ErrNotFound) {
		return nil, err
	}
	m := &Member{
		ID:             ids.New(),
		OrganizationID: orgID,
		UserID:         user.ID,
		Role:           role,
		JoinedAt:       s.now().UTC(),
	}
	if err := s.store.AddMember(ctx, m); err != nil {
		if errors.Is(err, auth.ErrConflict) {
			return nil, fmt.Errorf("%w: user is already a member", auth.ErrInvalidInput)
		}
		return nil, err
	}
	return m, nil
}

// ListMembers returns the membership rows joined with directory fields.
func (s *Service) ListMembers(ctx context.Context, orgID string) ([]MemberDetail, error) {
	if _, err := s.store.Find(ctx, orgID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, orgID)
}

// UpdateMemberRole changes a member's role. The role of a current owner is
// immutable regardless of the caller.
func (s *Service) UpdateMemberRole(ctx context.Context, orgID, userID string, role auth.OrgRole) (*Member, error) {
	if _, ok := auth.ParseOrgRole(string(role)); !ok {
		return nil, fmt.Errorf("%w: unknown membership role %q", auth.ErrInvalidInput, role)
	}
	member, err := s.store.FindMember(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if member.Role == auth.OrgRoleOwner {
		return nil, fmt.Errorf("%w: the role of an owner cannot be changed", auth.ErrInvalidInput)
	}
	if err := s.store.UpdateMemberRole(ctx, orgID, userID, role); err != nil {
		return nil, err
	}
	member.Role = role
	return member, nil
}

// RemoveMember deletes a membership. Removing a member with the owner role
// is rejected while that member is the organization's only owner.
func (s *Service) RemoveMember(ctx context.Context, orgID, userID string) error {
	member, err := s.store.FindMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member.Role == auth.OrgRoleOwner {
		owners, err := s.store.CountOwners(ctx, orgID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return fmt.Errorf("%w: cannot remove the only owner", auth.ErrInvalidInput)
		}
	}
	return s.store.RemoveMember(ctx, orgID, userID)
}
