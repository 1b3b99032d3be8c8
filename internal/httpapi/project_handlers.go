package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"crewbase.io/internal/auth"
	"crewbase.io/internal/project"
)

type createProjectRequest struct {
	OrganizationID string `json:"organization_id" validate:"required"`
	Name           string `json:"name" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=2000"`
}

func (a *API) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createProject(w, r)
	case http.MethodGet:
		orgID := strings.TrimSpace(r.URL.Query().Get("organization_id"))
		if orgID == "" {
			writeError(w, r, http.StatusBadRequest, "organization_id is required")
			return
		}
		a.listProjects(w, r, orgID)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	principal, ok := a.authorize(w, r, auth.Policy{OrgScoped: true}, req.OrganizationID)
	if !ok {
		return
	}
	p, err := a.projects.Create(r.Context(), project.CreateInput{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		CreatedByID:    principal.ID,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.auditEvent(r.Context(), "project.create", map[string]any{
		"project_id": p.ID,
		"org_id":     p.OrganizationID,
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/projects/%s", p.ID))
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) listProjects(w http.ResponseWriter, r *http.Request, orgID string) {
	if _, ok := a.authorize(w, r, auth.Policy{OrgScoped: true}, orgID); !ok {
		return
	}
	projects, err := a.projects.ListByOrg(r.Context(), orgID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if projects == nil {
		projects = []*project.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// handleOrganizationProjects serves GET /v1/organizations/{id}/projects as
// an alias of the query-parameter listing.
func (a *API) handleOrganizationProjects(w http.ResponseWriter, r *http.Request, orgID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	a.listProjects(w, r, orgID)
}

func (a *API) handleProjectResource(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/projects/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	// Resolve the project first; its organization drives the membership
	// gate. Unknown ids 404 before any policy check.
	p, err := a.projects.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if _, ok := a.authorize(w, r, auth.Policy{OrgScoped: true}, p.OrganizationID); !ok {
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		policy := auth.Policy{OrgScoped: true, MinOrgRole: auth.OrgRoleAdmin}
		if _, ok := a.authorize(w, r, policy, p.OrganizationID); !ok {
			return
		}
		if err := a.projects.Delete(r.Context(), id); err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.auditEvent(r.Context(), "project.delete", map[string]any{
			"project_id": id,
			"org_id":     p.OrganizationID,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}
