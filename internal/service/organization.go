package service

import (
	"context"
	"strings"

	"github.com/Rrens/salespulse/internal/domain"
)

const resourceOrganization = "organization"

// OrganizationService handles workspace settings and the caller's workspace list
type OrganizationService struct {
	workspaces domain.WorkspaceRepository
	members    domain.MemberRepository
	audit      Auditor
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(workspaces domain.WorkspaceRepository, members domain.MemberRepository, auditor Auditor) *OrganizationService {
	return &OrganizationService{
		workspaces: workspaces,
		members:    members,
		audit:      auditor,
	}
}

// Get returns the caller's workspace with its active member count
func (s *OrganizationService) Get(ctx context.Context, actor domain.Actor) (org *domain.Organization, err error) {
	op := newOperation(actor, resourceOrganization, domain.ActionOrgViewed, domain.ActionOrgFailed)
	op.set("operation", "get")
	defer func() { op.finish(ctx, s.audit, err) }()

	workspace, err := s.workspaces.GetByID(ctx, actor.WorkspaceID)
	if err != nil {
		return nil, domain.Internal("failed to get organization", err)
	}
	if workspace == nil {
		return nil, domain.NotFound("organization")
	}

	count, err := s.workspaces.CountActiveMembers(ctx, actor.WorkspaceID)
	if err != nil {
		return nil, domain.Internal("failed to count members", err)
	}

	return &domain.Organization{Workspace: *workspace, MemberCount: count, Role: actor.Role}, nil
}

// Update changes the workspace settings. Managers may rename the workspace
// and merge settings; only the owner may change the plan.
func (s *OrganizationService) Update(ctx context.Context, actor domain.Actor, update domain.WorkspaceUpdate) (workspace *domain.Workspace, err error) {
	op := newOperation(actor, resourceOrganization, domain.ActionOrgUpdated, domain.ActionOrgFailed)
	op.set("operation", "update")
	defer func() { op.finish(ctx, s.audit, err) }()

	if !actor.Role.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}
	if update.Empty() {
		return nil, domain.Invalid("no fields to update")
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domain.Invalid("invalid name", domain.FieldError{Field: "name", Message: "must not be blank"})
		}
		update.Name = &name
		op.set("name", name)
	}
	if update.PlanTier != nil {
		if actor.Role != domain.RoleOwner {
			return nil, domain.Forbidden("only the owner can change the plan")
		}
		op.set("planTier", string(*update.PlanTier))
	}
	if len(update.Settings) > 0 {
		keys := make([]string, 0, len(update.Settings))
		for k := range update.Settings {
			keys = append(keys, k)
		}
		op.set("settings", keys)
	}

	workspace, err = s.workspaces.Update(ctx, actor.WorkspaceID, &update)
	if err != nil {
		return nil, domain.Internal("failed to update organization", err)
	}
	if workspace == nil {
		return nil, domain.NotFound("organization")
	}

	return workspace, nil
}

// Workspaces lists the workspaces the caller is an active member of
func (s *OrganizationService) Workspaces(ctx context.Context, identity domain.Identity) (memberships []domain.Membership, err error) {
	op := newOperation(domain.Actor{UserID: identity.UserID}, resourceOrganization, domain.ActionWorkspacesListed, domain.ActionOrgFailed)
	op.set("operation", "list_workspaces")
	defer func() { op.finish(ctx, s.audit, err) }()

	memberships, err = s.members.ListMemberships(ctx, identity.UserID)
	if err != nil {
		return nil, domain.Internal("failed to list workspaces", err)
	}
	op.set("count", len(memberships))

	return memberships, nil
}
