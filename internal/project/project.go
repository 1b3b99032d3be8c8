package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crewbase.io/internal/auth"
	"crewbase.io/internal/ids"
)

// Project belongs to one organization and records its creator. Deletion is
// soft: a deleted project keeps its row with DeletedAt set and disappears
// from listings.
type Project struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	CreatedByID    string     `json:"created_by_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// Store describes project persistence. Find and ListByOrg exclude
// soft-deleted rows.
type Store interface {
	Create(ctx context.Context, p *Project) error
	Find(ctx context.Context, id string) (*Project, error)
	ListByOrg(ctx context.Context, orgID string) ([]*Project, error)
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
}

// Service implements project operations.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the project service.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("project: store is required")
	}
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateInput carries the fields accepted when creating a project.
type CreateInput struct {
	OrganizationID string
	Name           string
	Description    string
	CreatedByID    string
}

// Create persists a new project.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", auth.ErrInvalidInput)
	}
	if input.OrganizationID == "" {
		return nil, fmt.Errorf("%w: organization id is required", auth.ErrInvalidInput)
	}
	now := s.now().UTC()
	p := &Project{
		ID:             ids.New(),
		OrganizationID: input.OrganizationID,
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
		CreatedByID:    input.CreatedByID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get loads a project; soft-deleted projects resolve to NotFound.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.store.Find(ctx, id)
}

// ListByOrg returns the organization's live projects.
func (s *Service) ListByOrg(ctx context.Context, orgID string) ([]*Project, error) {
	return s.store.ListByOrg(ctx, orgID)
}

// Delete soft-deletes a project.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Find(ctx, id); err != nil {
		return err
	}
	return s.store.SoftDelete(ctx, id, s.now().UTC())
}
