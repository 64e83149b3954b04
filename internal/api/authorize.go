package api

import (
	"net/http"

	"github.com/dataline/accessgate/internal/auth"
	"github.com/dataline/accessgate/internal/metrics"
)

// AuthorizeResponse reports one authorization decision.
type AuthorizeResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// HandleAuthorize evaluates whether the caller may perform a capability on
// a resource. The decision endpoint lets CLI callers and the catalog
// frontend pre-check permissions without attempting the operation.
// GET /api/authorize?resource_type=team&resource_id=42&capability=edit
func (h *Handler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, ErrCodeUnauthenticated, "no principal")
		return
	}

	q := r.URL.Query()
	resource, capability, err := parseAuthorizeQuery(q.Get("resource_type"), q.Get("resource_id"), q.Get("capability"))
	if err != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err)
		return
	}

	decision, derr := h.engine.Authorize(r.Context(), principal, capability, resource)
	if derr != nil {
		h.logger.Error("authorization check failed", "error", derr)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return
	}

	metrics.RecordAuthzDecision(string(resource.Type), string(capability), decision.Allowed)

	writeJSON(w, http.StatusOK, AuthorizeResponse{
		Allowed: decision.Allowed,
		Reason:  string(decision.Reason),
	})
}

// parseAuthorizeQuery validates the query parameters. The error return is a
// human-readable message, empty on success.
func parseAuthorizeQuery(resourceType, resourceID, capability string) (auth.Resource, auth.Capability, string) {
	var resource auth.Resource

	switch auth.ResourceType(resourceType) {
	case auth.ResourceTeam, auth.ResourceProject:
		resource.Type = auth.ResourceType(resourceType)
	default:
		return resource, "", "resource_type must be team or project"
	}

	if resourceID == "" {
		return resource, "", "resource_id is required"
	}
	resource.ID = resourceID

	switch auth.Capability(capability) {
	case auth.CapabilityView, auth.CapabilityExecute, auth.CapabilityEdit,
		auth.CapabilityManageSettings, auth.CapabilityManageMembers, auth.CapabilityDelete:
		return resource, auth.Capability(capability), ""
	default:
		return resource, "", "unknown capability"
	}
}
