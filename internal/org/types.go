package org

import (
	"time"

	"crewbase.io/internal/auth"
)

// Organization groups users and projects. Every organization references
// exactly one owner user, set at creation time.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member links one user to one organization with a membership role.
// The (user, organization) pair is unique.
type Member struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id"`
	UserID         string       `json:"user_id"`
	Role           auth.OrgRole `json:"role"`
	JoinedAt       time.Time    `json:"joined_at"`
}

// MemberDetail is a member row joined with directory fields for display.
type MemberDetail struct {
	Member
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Detail is an organization joined with its members. The owner's membership
// role is resolved by the explicit join, not by relation loading.
type Detail struct {
	Organization
	Members []MemberDetail `json:"members"`
}

// Update carries the mutable organization fields; nil means unchanged.
type Update struct {
	Name        *string
	Description *string
}
