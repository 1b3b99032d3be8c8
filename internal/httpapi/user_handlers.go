package httpapi

import (
	"net/http"
	"strings"

	"crewbase.io/internal/auth"
)

type updateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Avatar    *string `json:"avatar" validate:"omitempty,max=512"`
}

// handleUserProfile serves the caller's own record at /v1/users/me.
func (a *API) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.authorize(w, r, auth.Policy{}, "")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		user, err := a.auth.Profile(r.Context(), principal.ID)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user.Response())
	case http.MethodPatch:
		var req updateProfileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := a.validate.Struct(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		user, err := a.auth.UpdateProfile(r.Context(), principal.ID, auth.ProfileUpdate{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Avatar:    req.Avatar,
		})
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.auditEvent(r.Context(), "user.profile_updated", map[string]any{"user_id": user.ID})
		writeJSON(w, http.StatusOK, user.Response())
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch)
	}
}

// handleUserResource serves /v1/users/{id} for directory lookups. Credential
// fields are stripped by Response.
func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/users/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.authorize(w, r, auth.Policy{Roles: []auth.Role{auth.RoleAdmin}}, ""); !ok {
		return
	}
	user, err := a.auth.Profile(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Response())
}
