package auth

import (
	"context"
	"errors"
	"fmt"
)

// Policy declares the authorization requirements of one operation. It is
// attached to the operation definition and evaluated by Engine.Authorize
// before the operation body runs.
type Policy struct {
	// Roles is the set of acceptable global roles. Empty means any
	// authenticated user passes the global gate.
	Roles []Role
	// OrgScoped marks the operation as scoped to an organization; the
	// caller must hold a membership in the target organization.
	OrgScoped bool
	// MinOrgRole is the minimum membership role, in the total order
	// owner > admin > member. Zero value means any membership suffices.
	MinOrgRole OrgRole
}

// MembershipDirectory resolves a caller's membership role within one
// organization. It returns ErrNotFound when no membership row exists.
type MembershipDirectory interface {
	MemberRole(ctx context.Context, orgID, userID string) (OrgRole, error)
}

// Engine evaluates operation policies against an authenticated principal.
// It only reads role state and never mutates it.
type Engine struct {
	members MembershipDirectory
}

// NewEngine constructs the authorization engine.
func NewEngine(members MembershipDirectory) (*Engine, error) {
	if members == nil {
		return nil, errors.New("auth: membership directory is required")
	}
	return &Engine{members: members}, nil
}

// Authorize runs the global role gate and, when the policy is organization
// scoped, the membership role gate. A missing membership row fails the same
// way as an insufficient role.
func (e *Engine) Authorize(ctx context.Context, principal AuthenticatedPrincipal, policy Policy, orgID string) error {
	if len(policy.Roles) > 0 && !roleAllowed(policy.Roles, principal.Role) {
		return ErrForbidden
	}
	if !policy.OrgScoped {
		return nil
	}
	if orgID == "" {
		return fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	role, err := e.members.MemberRole(ctx, orgID, principal.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	min := policy.MinOrgRole
	if min == "" {
		min = OrgRoleMember
	}
	if !role.AtLeast(min) {
		return ErrForbidden
	}
	return nil
}

func roleAllowed(allowed []Role, role Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
