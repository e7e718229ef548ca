package service

import (
	"context"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
)

// TokenVerifier validates session tokens issued by the auth provider
type TokenVerifier interface {
	ValidateAccessToken(token string) (domain.Identity, error)
}

// SessionService resolves a request's session and workspace membership into an actor
type SessionService struct {
	verifier TokenVerifier
	members  domain.MemberRepository
	audit    Auditor
}

// NewSessionService creates a new session resolver
func NewSessionService(verifier TokenVerifier, members domain.MemberRepository, auditor Auditor) *SessionService {
	return &SessionService{
		verifier: verifier,
		members:  members,
		audit:    auditor,
	}
}

// Authenticate verifies the session token. It fails closed.
func (s *SessionService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.Unauthenticated("authentication required")
	}

	identity, err := s.verifier.ValidateAccessToken(token)
	if err != nil {
		s.denied(ctx, domain.Actor{}, "invalid_session", err)
		return domain.Identity{}, domain.Unauthenticated("invalid or expired session")
	}

	return identity, nil
}

// Resolve finds the caller's active membership in the requested workspace.
// No membership, an inactive membership and an inactive workspace all fail
// the same way.
func (s *SessionService) Resolve(ctx context.Context, identity domain.Identity, workspaceID uuid.UUID) (domain.Actor, error) {
	actor := domain.Actor{UserID: identity.UserID, Email: identity.Email, WorkspaceID: workspaceID}

	member, err := s.members.GetActiveMember(ctx, workspaceID, identity.UserID)
	if err != nil {
		return domain.Actor{}, domain.Internal("failed to resolve membership", err)
	}
	if member == nil {
		s.denied(ctx, actor, "no_active_membership", nil)
		return domain.Actor{}, domain.Unauthenticated("no active membership in this workspace")
	}

	actor.MemberID = member.ID
	actor.Role = member.Role
	return actor, nil
}

// Deny records a request rejected by a role check
func (s *SessionService) Deny(ctx context.Context, actor domain.Actor, required []domain.Role) {
	if s.audit == nil {
		return
	}
	roles := make([]string, len(required))
	for i, r := range required {
		roles[i] = string(r)
	}

	op := newOperation(actor, "route", domain.ActionAccessDenied, domain.ActionAccessDenied)
	op.set("role", string(actor.Role))
	op.set("required", roles)
	op.finish(ctx, s.audit, domain.Forbidden("insufficient permissions"))
}

func (s *SessionService) denied(ctx context.Context, actor domain.Actor, reason string, cause error) {
	op := newOperation(actor, "session", domain.ActionAuthFailed, domain.ActionAuthFailed)
	op.set("reason", reason)
	if cause != nil {
		op.set("cause", cause.Error())
	}
	op.finish(ctx, s.audit, domain.Unauthenticated(reason))
}
