package handler

import (
	"net/http"

	"github.com/Rrens/salespulse/internal/api/response"
	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/service"
)

// TeamHandler handles team membership and invitation endpoints
type TeamHandler struct {
	teamService *service.TeamService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// List returns the workspace's members
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}

	q := r.URL.Query()
	filter := domain.TeamFilter{Role: domain.Role(q.Get("role"))}
	if filter.IncludeInactive, err = queryBool(q, "includeInactive"); err != nil {
		return err
	}
	if filter.Page, err = queryPage(q); err != nil {
		return err
	}

	page, err := h.teamService.List(r.Context(), actor, filter)
	if err != nil {
		return err
	}

	response.OK(w, page)
	return nil
}

// Get returns one member
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	member, err := h.teamService.Get(r.Context(), actor, id)
	if err != nil {
		return err
	}

	response.OK(w, member)
	return nil
}

// Invite creates an invitation and returns its token once
func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request, input domain.InvitationCreate) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}

	invitation, err := h.teamService.Invite(r.Context(), actor, input)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusCreated, invitation, "Invitation sent")
	return nil
}

// Update changes a member's role or active flag
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request, update domain.MemberUpdate) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	member, err := h.teamService.Update(r.Context(), actor, id, update)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, member, "Team member updated")
	return nil
}

// Remove deactivates a member
func (h *TeamHandler) Remove(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	member, err := h.teamService.Remove(r.Context(), actor, id)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, member, "Team member removed")
	return nil
}

// ListInvitations returns pending invitations
func (h *TeamHandler) ListInvitations(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}

	invitations, err := h.teamService.ListInvitations(r.Context(), actor)
	if err != nil {
		return err
	}

	response.OK(w, invitations)
	return nil
}

// RevokeInvitation cancels a pending invitation
func (h *TeamHandler) RevokeInvitation(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	if err := h.teamService.RevokeInvitation(r.Context(), actor, id); err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, nil, "Invitation revoked")
	return nil
}

// AcceptInvitation joins the caller to the inviting workspace
func (h *TeamHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request, input domain.InvitationAccept) error {
	identity, err := identityFrom(r)
	if err != nil {
		return err
	}

	member, err := h.teamService.AcceptInvitation(r.Context(), identity, input.Token)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, member, "Invitation accepted")
	return nil
}
