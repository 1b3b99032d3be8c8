package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"crewbase.io/internal/auth"
	"crewbase.io/internal/org"
)

type createOrganizationRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type updateOrganizationRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type inviteMemberRequest struct {
	Email string `json:"email" validate:"required,max=254"`
	Role  string `json:"role" validate:"omitempty,oneof=owner admin member"`
}

type updateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=owner admin member"`
}

func (a *API) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createOrganization(w, r)
	case http.MethodGet:
		a.listOrganizations(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) createOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.authorize(w, r, auth.Policy{Roles: []auth.Role{auth.RoleAdmin}}, "")
	if !ok {
		return
	}
	var req createOrganizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	o, err := a.orgs.Create(r.Context(), org.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     principal.ID,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.auditEvent(r.Context(), "org.create", map[string]any{"org_id": o.ID})
	w.Header().Set("Location", fmt.Sprintf("/v1/organizations/%s", o.ID))
	writeJSON(w, http.StatusCreated, o)
}

func (a *API) listOrganizations(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.authorize(w, r, auth.Policy{}, ""); !ok {
		return
	}
	orgs, err := a.orgs.List(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if orgs == nil {
		orgs = []*org.Organization{}
	}
	writeJSON(w, http.StatusOK, orgs)
}

// handleOrganizationScoped routes /v1/organizations/{id}[/members[/{userId}]]
// and /v1/organizations/{id}/projects.
func (a *API) handleOrganizationScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/organizations/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	orgID := parts[0]
	switch {
	case len(parts) == 1:
		a.handleOrganizationResource(w, r, orgID)
	case len(parts) == 2 && parts[1] == "members":
		a.handleOrganizationMembers(w, r, orgID)
	case len(parts) == 3 && parts[1] == "members":
		a.handleOrganizationMember(w, r, orgID, parts[2])
	case len(parts) == 2 && parts[1] == "projects":
		a.handleOrganizationProjects(w, r, orgID)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleOrganizationResource(w http.ResponseWriter, r *http.Request, orgID string) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.authorize(w, r, auth.Policy{OrgScoped: true}, orgID); !ok {
			return
		}
		detail, err := a.orgs.Get(r.Context(), orgID)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	case http.MethodPatch:
		policy := auth.Policy{Roles: []auth.Role{auth.RoleAdmin, auth.RoleManager}}
		if _, ok := a.authorize(w, r, policy, ""); !ok {
			return
		}
		var req updateOrganizationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := a.validate.Struct(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		o, err := a.orgs.Update(r.Context(), orgID, org.Update{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.auditEvent(r.Context(), "org.update", map[string]any{"org_id": orgID})
		writeJSON(w, http.StatusOK, o)
	case http.MethodDelete:
		if _, ok := a.authorize(w, r, auth.Policy{Roles: []auth.Role{auth.RoleAdmin}}, ""); !ok {
			return
		}
		if err := a.orgs.Delete(r.Context(), orgID); err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.auditEvent(r.Context(), "org.delete", map[string]any{"org_id": orgID})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) handleOrganizationMembers(w http.ResponseWriter, r *http.Request, orgID string) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.authorize(w, r, auth.Policy{OrgScoped: true}, orgID); !ok {
			return
		}
		members, err := a.orgs.ListMembers(r.Context(), orgID)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		if members == nil {
			members = []org.MemberDetail{}
		}
		writeJSON(w, http.StatusOK, members)
	case http.MethodPost:
		policy := auth.Policy{OrgScoped: true, MinOrgRole: auth.OrgRoleAdmin}
		if _, ok := a.authorize(w, r, policy, orgID); !ok {
			return
		}
		var req inviteMemberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := a.validate.Struct(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role := auth.OrgRoleMember
		if req.Role != "" {
			role, _ = auth.ParseOrgRole(req.Role)
		}
		m, err := a.orgs.InviteMember(r.Context(), orgID, req.Email, role)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.auditEvent(r.Context(), "org.member_added", map[string]any{
			"org_id":    orgID,
			"member_id": m.UserID,
			"role":      string(m.Role),
		})
		writeJSON(w, http.StatusCreated, m)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleOrganizationMember(w http.ResponseWriter, r *http.Request, orgID, userID string) {
	policy := auth.Policy{OrgScoped: true, MinOrgRole: auth.OrgRoleAdmin}
	switch r.Method {
	case http.MethodPatch:
		if _, ok := a.authorize(w, r, policy, orgID); !ok {
			return
		}
		var req updateMemberRoleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := a.validate.Struct(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role, valid := auth.ParseOrgRole(req.Role)
		if !valid {
			writeError(w, r, http.StatusBadRequest, "unknown role")
			return
		}
		m, err := a.orgs.UpdateMemberRole(r.Context(), orgID, userID, role)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.auditEvent(r.Context(), "org.member_role_changed", map[string]any{
			"org_id":    orgID,
			"member_id": userID,
			"role":      string(m.Role),
		})
		writeJSON(w, http.StatusOK, m)
	case http.MethodDelete:
		if _, ok := a.authorize(w, r, policy, orgID); !ok {
			return
		}
		if err := a.orgs.RemoveMember(r.Context(), orgID, userID); err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.auditEvent(r.Context(), "org.member_removed", map[string]any{
			"org_id":    orgID,
			"member_id": userID,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}
