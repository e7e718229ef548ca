package handler

import (
	"net/http"

	"github.com/Rrens/salespulse/internal/api/response"
	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/service"
)

// OrganizationHandler handles workspace settings endpoints
type OrganizationHandler struct {
	organizationService *service.OrganizationService
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(organizationService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizationService: organizationService}
}

// Get returns the caller's workspace
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}

	org, err := h.organizationService.Get(r.Context(), actor)
	if err != nil {
		return err
	}

	response.OK(w, org)
	return nil
}

// Update changes the workspace settings
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request, update domain.WorkspaceUpdate) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}

	workspace, err := h.organizationService.Update(r.Context(), actor, update)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, workspace, "Organization updated")
	return nil
}

// Workspaces lists the caller's active memberships
func (h *OrganizationHandler) Workspaces(w http.ResponseWriter, r *http.Request) error {
	identity, err := identityFrom(r)
	if err != nil {
		return err
	}

	memberships, err := h.organizationService.Workspaces(r.Context(), identity)
	if err != nil {
		return err
	}

	response.OK(w, memberships)
	return nil
}

// Roles returns the role hierarchy
func Roles(w http.ResponseWriter, r *http.Request) {
	response.OK(w, domain.Hierarchy())
}
