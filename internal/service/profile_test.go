package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func avatarKeyFor(userID string) interface{} {
	return mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "avatars/"+userID+"/") && strings.HasSuffix(key, ".png")
	})
}

func TestProfileService_UploadAvatarReplacesPrevious(t *testing.T) {
	profiles := new(MockProfileRepository)
	files := new(MockStore)
	auditor := &recordingAuditor{}
	svc := NewProfileService(profiles, new(MockWorkspaceRepository), files, auditor)

	ctx := context.Background()
	identity := actorWith(domain.RoleMember).Identity()
	current := &domain.Profile{ID: identity.UserID, Email: identity.Email, AvatarURL: "/uploads/avatars/old.png"}
	newURL := "/uploads/avatars/" + identity.UserID.String() + "/new.png"

	profiles.On("Ensure", ctx, identity.UserID, identity.Email).Return(current, nil)
	files.On("Put", ctx, avatarKeyFor(identity.UserID.String()), mock.Anything).Return(newURL, nil)
	profiles.On("SetAvatar", ctx, identity.UserID, newURL).Return(nil)
	files.On("KeyFromURL", "/uploads/avatars/old.png").Return("avatars/old.png", true)
	files.On("Delete", ctx, "avatars/old.png").Return(nil)

	profile, err := svc.UploadAvatar(ctx, identity, AvatarUpload{Data: []byte("png"), ContentType: "image/png", Extension: ".png"})
	require.NoError(t, err)
	assert.Equal(t, newURL, profile.AvatarURL)

	files.AssertExpectations(t)
	profiles.AssertExpectations(t)
	assert.Equal(t, []string{domain.ActionAvatarUploaded}, auditor.actions())
	assert.Equal(t, newURL, auditor.last().Metadata["avatarUrl"])
}

func TestProfileService_UploadAvatarCompensatesOnProfileFailure(t *testing.T) {
	profiles := new(MockProfileRepository)
	files := new(MockStore)
	auditor := &recordingAuditor{}
	svc := NewProfileService(profiles, new(MockWorkspaceRepository), files, auditor)

	ctx := context.Background()
	identity := actorWith(domain.RoleMember).Identity()
	current := &domain.Profile{ID: identity.UserID, Email: identity.Email}
	newURL := "/uploads/avatars/new.png"

	var storedKey string
	profiles.On("Ensure", ctx, identity.UserID, identity.Email).Return(current, nil)
	files.On("Put", ctx, avatarKeyFor(identity.UserID.String()), mock.Anything).
		Run(func(args mock.Arguments) { storedKey = args.String(1) }).
		Return(newURL, nil)
	profiles.On("SetAvatar", ctx, identity.UserID, newURL).Return(errors.New("connection refused"))
	files.On("Delete", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.UploadAvatar(ctx, identity, AvatarUpload{Data: []byte("png"), ContentType: "image/png", Extension: ".png"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInternal))

	files.AssertCalled(t, "Delete", mock.Anything, storedKey)
	files.AssertNumberOfCalls(t, "Delete", 1)
	files.AssertNotCalled(t, "KeyFromURL", mock.Anything)

	event := auditor.last()
	assert.Equal(t, domain.ActionAvatarFailed, event.Action)
	assert.Equal(t, domain.SeverityError, event.Severity)
	assert.Equal(t, "update_profile", event.Metadata["failedStep"])
}

func TestProfileService_DeleteAvatar(t *testing.T) {
	ctx := context.Background()

	t.Run("no avatar is a no-op", func(t *testing.T) {
		profiles := new(MockProfileRepository)
		files := new(MockStore)
		svc := NewProfileService(profiles, new(MockWorkspaceRepository), files, &recordingAuditor{})
		identity := actorWith(domain.RoleViewer).Identity()

		profiles.On("Ensure", ctx, identity.UserID, identity.Email).Return(&domain.Profile{ID: identity.UserID}, nil)

		profile, err := svc.DeleteAvatar(ctx, identity)
		require.NoError(t, err)
		assert.Empty(t, profile.AvatarURL)
		profiles.AssertNotCalled(t, "SetAvatar", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("file removal failure does not fail the request", func(t *testing.T) {
		profiles := new(MockProfileRepository)
		files := new(MockStore)
		auditor := &recordingAuditor{}
		svc := NewProfileService(profiles, new(MockWorkspaceRepository), files, auditor)
		identity := actorWith(domain.RoleMember).Identity()

		profiles.On("Ensure", ctx, identity.UserID, identity.Email).Return(&domain.Profile{ID: identity.UserID, AvatarURL: "/uploads/avatars/a.png"}, nil)
		profiles.On("SetAvatar", ctx, identity.UserID, "").Return(nil)
		files.On("KeyFromURL", "/uploads/avatars/a.png").Return("avatars/a.png", true)
		files.On("Delete", ctx, "avatars/a.png").Return(errors.New("permission denied"))

		profile, err := svc.DeleteAvatar(ctx, identity)
		require.NoError(t, err)
		assert.Empty(t, profile.AvatarURL)
		assert.Equal(t, []string{domain.ActionAvatarDeleted}, auditor.actions())
	})
}

func TestProfileService_GetWithWorkspace(t *testing.T) {
	profiles := new(MockProfileRepository)
	workspaces := new(MockWorkspaceRepository)
	svc := NewProfileService(profiles, workspaces, new(MockStore), &recordingAuditor{})

	ctx := context.Background()
	actor := actorWith(domain.RoleAdmin)
	identity := actor.Identity()

	profiles.On("Ensure", ctx, identity.UserID, identity.Email).Return(&domain.Profile{ID: identity.UserID, Email: identity.Email}, nil)
	workspaces.On("GetByID", ctx, actor.WorkspaceID).Return(&domain.Workspace{ID: actor.WorkspaceID, Name: "Acme"}, nil)

	view, err := svc.Get(ctx, identity, &actor)
	require.NoError(t, err)
	require.NotNil(t, view.Workspace)
	assert.Equal(t, "Acme", view.Workspace.Name)
	assert.Equal(t, domain.RoleAdmin, view.Role)

	view, err = svc.Get(ctx, identity, nil)
	require.NoError(t, err)
	assert.Nil(t, view.Workspace)
	workspaces.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestProfileService_UpdateRejectsEmpty(t *testing.T) {
	profiles := new(MockProfileRepository)
	svc := NewProfileService(profiles, new(MockWorkspaceRepository), new(MockStore), &recordingAuditor{})

	_, err := svc.Update(context.Background(), actorWith(domain.RoleMember).Identity(), domain.ProfileUpdate{})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
