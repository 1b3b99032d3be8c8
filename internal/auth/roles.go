package auth

import "strings"

// Role is the global role attached to every user account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// ParseRole normalizes raw into a known global role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleManager:
		return RoleManager, true
	case RoleMember:
		return RoleMember, true
	default:
		return "", false
	}
}

// OrgRole is a role scoped to a single organization membership. It is
// independent of the global Role axis.
type OrgRole string

const (
	OrgRoleOwner  OrgRole = "owner"
	OrgRoleAdmin  OrgRole = "admin"
	OrgRoleMember OrgRole = "member"
)

// ParseOrgRole normalizes raw into a known membership role.
func ParseOrgRole(raw string) (OrgRole, bool) {
	switch OrgRole(strings.TrimSpace(strings.ToLower(raw))) {
	case OrgRoleOwner:
		return OrgRoleOwner, true
	case OrgRoleAdmin:
		return OrgRoleAdmin, true
	case OrgRoleMember:
		return OrgRoleMember, true
	default:
		return "", false
	}
}

var orgRoleRank = map[OrgRole]int{
	OrgRoleMember: 1,
	OrgRoleAdmin:  2,
	OrgRoleOwner:  3,
}

// AtLeast reports whether r ranks at or above min in the total order
// owner > admin > member. Unknown roles never satisfy any minimum.
func (r OrgRole) AtLeast(min OrgRole) bool {
	rank, ok := orgRoleRank[r]
	if !ok {
		return false
	}
	return rank >= orgRoleRank[min]
}
