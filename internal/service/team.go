package service

import (
	"context"
	"strings"
	"time"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/security"
	"github.com/google/uuid"
)

const (
	resourceTeamMember = "team_member"
	resourceInvitation = "invitation"

	// DefaultInvitationTTL is how long an invite link stays valid
	DefaultInvitationTTL = 7 * 24 * time.Hour
)

// TeamService handles membership and invitation operations
type TeamService struct {
	members       domain.MemberRepository
	invitations   domain.InvitationRepository
	audit         Auditor
	invitationTTL time.Duration
	now           func() time.Time
}

// NewTeamService creates a new team service
func NewTeamService(members domain.MemberRepository, invitations domain.InvitationRepository, auditor Auditor, invitationTTL time.Duration) *TeamService {
	if invitationTTL <= 0 {
		invitationTTL = DefaultInvitationTTL
	}
	return &TeamService{
		members:       members,
		invitations:   invitations,
		audit:         auditor,
		invitationTTL: invitationTTL,
		now:           time.Now,
	}
}

// List returns the workspace's members with their profiles
func (s *TeamService) List(ctx context.Context, actor domain.Actor, filter domain.TeamFilter) (page *domain.Page[domain.WorkspaceMember], err error) {
	op := newOperation(actor, resourceTeamMember, domain.ActionTeamListed, domain.ActionTeamFailed)
	op.set("operation", "list")
	defer func() { op.finish(ctx, s.audit, err) }()

	if !actor.Role.IsManager() {
		filter.IncludeInactive = false
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, domain.Invalid("invalid role filter", domain.FieldError{Field: "role", Message: "must be one of owner, admin, member, viewer"})
	}
	filter.Page = filter.Page.Normalize()

	members, total, err := s.members.List(ctx, actor.WorkspaceID, filter)
	if err != nil {
		return nil, domain.Internal("failed to list team members", err)
	}
	op.set("count", len(members))

	return &domain.Page[domain.WorkspaceMember]{Items: members, Pagination: domain.NewPagination(filter.Page, total)}, nil
}

// Get retrieves one membership
func (s *TeamService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (member *domain.WorkspaceMember, err error) {
	op := newOperation(actor, resourceTeamMember, domain.ActionTeamMemberViewed, domain.ActionTeamFailed)
	op.set("operation", "get")
	op.set("memberId", id.String())
	defer func() { op.finish(ctx, s.audit, err) }()

	member, err = s.members.GetByID(ctx, actor.WorkspaceID, id)
	if err != nil {
		return nil, domain.Internal("failed to get team member", err)
	}
	if member == nil {
		return nil, domain.NotFound("team member")
	}

	return member, nil
}

// Invite creates a pending invitation. The plain token is only returned here.
func (s *TeamService) Invite(ctx context.Context, actor domain.Actor, input domain.InvitationCreate) (invitation *domain.Invitation, err error) {
	op := newOperation(actor, resourceInvitation, domain.ActionInvitationSent, domain.ActionInvitationFailed)
	op.set("operation", "invite")
	defer func() { op.finish(ctx, s.audit, err) }()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	op.set("email", email)
	op.set("role", string(input.Role))

	if !input.Role.Valid() {
		return nil, domain.Invalid("invalid role", domain.FieldError{Field: "role", Message: "must be one of owner, admin, member, viewer"})
	}
	if input.Role == domain.RoleOwner && actor.Role != domain.RoleOwner {
		return nil, domain.Forbidden("only an owner can invite another owner")
	}

	existing, err := s.members.FindByEmail(ctx, actor.WorkspaceID, email)
	if err != nil {
		return nil, domain.Internal("failed to check membership", err)
	}
	if existing != nil && existing.IsActive {
		return nil, domain.Conflict("user is already a member of this workspace")
	}

	pending, err := s.invitations.HasPending(ctx, actor.WorkspaceID, email)
	if err != nil {
		return nil, domain.Internal("failed to check invitations", err)
	}
	if pending {
		return nil, domain.Conflict("an invitation is already pending for this email")
	}

	token, hash, err := security.NewInvitationToken()
	if err != nil {
		return nil, domain.Internal("failed to create invitation", err)
	}

	now := s.now().UTC()
	invitation = &domain.Invitation{
		ID:          uuid.New(),
		WorkspaceID: actor.WorkspaceID,
		Email:       email,
		Role:        input.Role,
		TokenHash:   hash,
		InvitedBy:   actor.UserID,
		Status:      domain.InvitationPending,
		ExpiresAt:   now.Add(s.invitationTTL),
		CreatedAt:   now,
	}
	if err = s.invitations.Create(ctx, invitation); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			return nil, err
		}
		return nil, domain.Internal("failed to create invitation", err)
	}
	op.set("invitationId", invitation.ID.String())

	invitation.Token = token
	return invitation, nil
}

// Update changes a member's role or active flag, enforcing the self-action
// and owner guards.
func (s *TeamService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, update domain.MemberUpdate) (member *domain.WorkspaceMember, err error) {
	op := newOperation(actor, resourceTeamMember, domain.ActionTeamMemberUpdated, domain.ActionTeamFailed)
	op.set("operation", "update")
	op.set("memberId", id.String())
	defer func() { op.finish(ctx, s.audit, err) }()

	if update.Empty() {
		return nil, domain.Invalid("no fields to update")
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, domain.Invalid("invalid role", domain.FieldError{Field: "role", Message: "must be one of owner, admin, member, viewer"})
		}
		op.set("role", string(*update.Role))
	}
	if update.IsActive != nil {
		op.set("isActive", *update.IsActive)
	}

	target, err := s.members.GetByID(ctx, actor.WorkspaceID, id)
	if err != nil {
		return nil, domain.Internal("failed to get team member", err)
	}
	if target == nil {
		return nil, domain.NotFound("team member")
	}

	if target.UserID == actor.UserID {
		if actor.Role == domain.RoleOwner {
			if update.IsActive != nil && !*update.IsActive {
				return nil, domain.Invalid("owners cannot deactivate themselves")
			}
			if update.Role != nil && *update.Role != domain.RoleOwner {
				return nil, domain.Invalid("owners cannot change their own role")
			}
		} else if update.Role != nil {
			return nil, domain.Forbidden("you cannot change your own role")
		}
	}

	if actor.Role != domain.RoleOwner {
		if target.Role == domain.RoleOwner {
			return nil, domain.Forbidden("only an owner can modify an owner")
		}
		if update.Role != nil && *update.Role == domain.RoleOwner {
			return nil, domain.Forbidden("only an owner can grant the owner role")
		}
	}

	member, err = s.members.Update(ctx, actor.WorkspaceID, id, &update)
	if err != nil {
		return nil, domain.Internal("failed to update team member", err)
	}
	if member == nil {
		return nil, domain.NotFound("team member")
	}
	member.Profile = target.Profile

	return member, nil
}

// Remove deactivates a membership. Memberships are never hard-deleted.
func (s *TeamService) Remove(ctx context.Context, actor domain.Actor, id uuid.UUID) (member *domain.WorkspaceMember, err error) {
	op := newOperation(actor, resourceTeamMember, domain.ActionTeamMemberRemoved, domain.ActionTeamFailed)
	op.set("operation", "remove")
	op.set("memberId", id.String())
	defer func() { op.finish(ctx, s.audit, err) }()

	if actor.Role != domain.RoleOwner {
		return nil, domain.Forbidden("only an owner can remove members")
	}

	target, err := s.members.GetByID(ctx, actor.WorkspaceID, id)
	if err != nil {
		return nil, domain.Internal("failed to get team member", err)
	}
	if target == nil {
		return nil, domain.NotFound("team member")
	}
	if target.UserID == actor.UserID {
		return nil, domain.Invalid("you cannot remove yourself")
	}

	inactive := false
	member, err = s.members.Update(ctx, actor.WorkspaceID, id, &domain.MemberUpdate{IsActive: &inactive})
	if err != nil {
		return nil, domain.Internal("failed to remove team member", err)
	}
	if member == nil {
		return nil, domain.NotFound("team member")
	}

	return member, nil
}

// ListInvitations returns the workspace's pending invitations
func (s *TeamService) ListInvitations(ctx context.Context, actor domain.Actor) (invitations []domain.Invitation, err error) {
	op := newOperation(actor, resourceInvitation, domain.ActionInvitationListed, domain.ActionInvitationFailed)
	op.set("operation", "list")
	defer func() { op.finish(ctx, s.audit, err) }()

	invitations, err = s.invitations.ListPending(ctx, actor.WorkspaceID)
	if err != nil {
		return nil, domain.Internal("failed to list invitations", err)
	}
	op.set("count", len(invitations))

	return invitations, nil
}

// RevokeInvitation cancels a pending invitation
func (s *TeamService) RevokeInvitation(ctx context.Context, actor domain.Actor, id uuid.UUID) (err error) {
	op := newOperation(actor, resourceInvitation, domain.ActionInvitationRevoked, domain.ActionInvitationFailed)
	op.set("operation", "revoke")
	op.set("invitationId", id.String())
	defer func() { op.finish(ctx, s.audit, err) }()

	revoked, err := s.invitations.Revoke(ctx, actor.WorkspaceID, id)
	if err != nil {
		return domain.Internal("failed to revoke invitation", err)
	}
	if !revoked {
		return domain.NotFound("invitation")
	}

	return nil
}

// AcceptInvitation joins the token holder to the inviting workspace. The
// invitation must be pending, unexpired and addressed to the caller's email.
func (s *TeamService) AcceptInvitation(ctx context.Context, identity domain.Identity, token string) (member *domain.WorkspaceMember, err error) {
	op := newOperation(domain.Actor{UserID: identity.UserID, Email: identity.Email}, resourceInvitation, domain.ActionInvitationAccept, domain.ActionInvitationFailed)
	op.set("operation", "accept")
	defer func() { op.finish(ctx, s.audit, err) }()

	invitation, err := s.invitations.GetPendingByTokenHash(ctx, security.HashToken(token))
	if err != nil {
		return nil, domain.Internal("failed to get invitation", err)
	}
	if invitation == nil {
		return nil, domain.NotFound("invitation")
	}
	op.workspaceID = invitation.WorkspaceID
	op.set("invitationId", invitation.ID.String())

	if invitation.Expired(s.now()) {
		return nil, domain.Invalid("invitation has expired")
	}
	if !strings.EqualFold(invitation.Email, strings.TrimSpace(identity.Email)) {
		return nil, domain.Forbidden("invitation was sent to a different email address")
	}

	member, err = s.invitations.Accept(ctx, invitation, identity.UserID)
	if err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			return nil, err
		}
		return nil, domain.Internal("failed to accept invitation", err)
	}
	op.set("memberId", member.ID.String())
	op.set("role", string(member.Role))

	return member, nil
}
