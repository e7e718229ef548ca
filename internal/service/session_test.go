package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		verifier := new(MockVerifier)
		auditor := &recordingAuditor{}
		svc := NewSessionService(verifier, new(MockMemberRepository), auditor)

		_, err := svc.Authenticate(ctx, "")
		assert.True(t, domain.IsKind(err, domain.KindAuthentication))
		verifier.AssertNotCalled(t, "ValidateAccessToken", "")
		assert.Empty(t, auditor.actions())
	})

	t.Run("invalid token is audited", func(t *testing.T) {
		verifier := new(MockVerifier)
		auditor := &recordingAuditor{}
		svc := NewSessionService(verifier, new(MockMemberRepository), auditor)

		verifier.On("ValidateAccessToken", "bad").Return(domain.Identity{}, errors.New("token is expired"))

		_, err := svc.Authenticate(ctx, "bad")
		assert.True(t, domain.IsKind(err, domain.KindAuthentication))

		event := auditor.last()
		assert.Equal(t, domain.ActionAuthFailed, event.Action)
		assert.Equal(t, domain.SeverityWarning, event.Severity)
		assert.Equal(t, "invalid_session", event.Metadata["reason"])
	})

	t.Run("valid token", func(t *testing.T) {
		verifier := new(MockVerifier)
		svc := NewSessionService(verifier, new(MockMemberRepository), &recordingAuditor{})
		identity := domain.Identity{UserID: uuid.New(), Email: "rep@example.com"}

		verifier.On("ValidateAccessToken", "good").Return(identity, nil)

		got, err := svc.Authenticate(ctx, "good")
		require.NoError(t, err)
		assert.Equal(t, identity, got)
	})
}

func TestSessionService_Resolve(t *testing.T) {
	ctx := context.Background()
	identity := domain.Identity{UserID: uuid.New(), Email: "rep@example.com"}
	workspaceID := uuid.New()

	t.Run("active member", func(t *testing.T) {
		members := new(MockMemberRepository)
		svc := NewSessionService(new(MockVerifier), members, &recordingAuditor{})
		memberID := uuid.New()

		members.On("GetActiveMember", ctx, workspaceID, identity.UserID).Return(&domain.WorkspaceMember{
			ID: memberID, WorkspaceID: workspaceID, UserID: identity.UserID, Role: domain.RoleAdmin, IsActive: true,
		}, nil)

		actor, err := svc.Resolve(ctx, identity, workspaceID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, actor.Role)
		assert.Equal(t, memberID, actor.MemberID)
		assert.Equal(t, workspaceID, actor.WorkspaceID)
	})

	t.Run("no membership fails closed", func(t *testing.T) {
		members := new(MockMemberRepository)
		auditor := &recordingAuditor{}
		svc := NewSessionService(new(MockVerifier), members, auditor)

		members.On("GetActiveMember", ctx, workspaceID, identity.UserID).Return(nil, nil)

		_, err := svc.Resolve(ctx, identity, workspaceID)
		assert.True(t, domain.IsKind(err, domain.KindAuthentication))
		assert.Equal(t, "no_active_membership", auditor.last().Metadata["reason"])
	})

	t.Run("lookup failure", func(t *testing.T) {
		members := new(MockMemberRepository)
		svc := NewSessionService(new(MockVerifier), members, &recordingAuditor{})

		members.On("GetActiveMember", ctx, workspaceID, identity.UserID).Return(nil, errors.New("timeout"))

		_, err := svc.Resolve(ctx, identity, workspaceID)
		assert.True(t, domain.IsKind(err, domain.KindInternal))
	})
}

func TestSessionService_Deny(t *testing.T) {
	auditor := &recordingAuditor{}
	svc := NewSessionService(new(MockVerifier), new(MockMemberRepository), auditor)

	svc.Deny(context.Background(), actorWith(domain.RoleViewer), []domain.Role{domain.RoleOwner, domain.RoleAdmin})

	event := auditor.last()
	assert.Equal(t, domain.ActionAccessDenied, event.Action)
	assert.Equal(t, "viewer", event.Metadata["role"])
	assert.Equal(t, []string{"owner", "admin"}, event.Metadata["required"])
}
