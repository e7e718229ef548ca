package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/saga"
	"github.com/Rrens/salespulse/internal/storage"
	"github.com/google/uuid"
)

const (
	resourceProfile = "profile"
	resourceAvatar  = "avatar"
)

// AvatarUpload is a validated avatar image
type AvatarUpload struct {
	Data        []byte
	ContentType string
	Extension   string
}

// ProfileService handles the caller's own profile and avatar
type ProfileService struct {
	profiles   domain.ProfileRepository
	workspaces domain.WorkspaceRepository
	files      storage.Store
	audit      Auditor
	now        func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(profiles domain.ProfileRepository, workspaces domain.WorkspaceRepository, files storage.Store, auditor Auditor) *ProfileService {
	return &ProfileService{
		profiles:   profiles,
		workspaces: workspaces,
		files:      files,
		audit:      auditor,
		now:        time.Now,
	}
}

func actorFor(identity domain.Identity, current *domain.Actor) domain.Actor {
	if current != nil {
		return *current
	}
	return domain.Actor{UserID: identity.UserID, Email: identity.Email}
}

// Get returns the caller's profile, creating it on first access, together
// with the workspace context when one was resolved.
func (s *ProfileService) Get(ctx context.Context, identity domain.Identity, current *domain.Actor) (view *domain.ProfileView, err error) {
	op := newOperation(actorFor(identity, current), resourceProfile, domain.ActionProfileViewed, domain.ActionProfileFailed)
	op.set("operation", "get")
	defer func() { op.finish(ctx, s.audit, err) }()

	profile, err := s.profiles.Ensure(ctx, identity.UserID, identity.Email)
	if err != nil {
		return nil, domain.Internal("failed to load profile", err)
	}

	view = &domain.ProfileView{Profile: *profile}
	if current != nil {
		workspace, werr := s.workspaces.GetByID(ctx, current.WorkspaceID)
		if werr != nil {
			return nil, domain.Internal("failed to load workspace", werr)
		}
		view.Workspace = workspace
		view.Role = current.Role
	}

	return view, nil
}

// Update applies a partial update to the caller's profile
func (s *ProfileService) Update(ctx context.Context, identity domain.Identity, update domain.ProfileUpdate) (profile *domain.Profile, err error) {
	op := newOperation(actorFor(identity, nil), resourceProfile, domain.ActionProfileUpdated, domain.ActionProfileFailed)
	op.set("operation", "update")
	defer func() { op.finish(ctx, s.audit, err) }()

	if update.Empty() {
		return nil, domain.Invalid("no fields to update")
	}

	if _, err = s.profiles.Ensure(ctx, identity.UserID, identity.Email); err != nil {
		return nil, domain.Internal("failed to load profile", err)
	}

	profile, err = s.profiles.Update(ctx, identity.UserID, &update)
	if err != nil {
		return nil, domain.Internal("failed to update profile", err)
	}
	if profile == nil {
		return nil, domain.NotFound("profile")
	}

	return profile, nil
}

// UploadAvatar stores a new avatar and points the profile at it. The three
// steps run as a saga: a failed profile update deletes the stored file, and
// the previous avatar is only removed once the new one is in place.
func (s *ProfileService) UploadAvatar(ctx context.Context, identity domain.Identity, upload AvatarUpload) (profile *domain.Profile, err error) {
	op := newOperation(actorFor(identity, nil), resourceAvatar, domain.ActionAvatarUploaded, domain.ActionAvatarFailed)
	op.set("operation", "upload")
	op.set("contentType", upload.ContentType)
	op.set("size", len(upload.Data))
	defer func() { op.finish(ctx, s.audit, err) }()

	current, err := s.profiles.Ensure(ctx, identity.UserID, identity.Email)
	if err != nil {
		return nil, domain.Internal("failed to load profile", err)
	}
	previousURL := current.AvatarURL

	key := fmt.Sprintf("avatars/%s/%s%s", identity.UserID, uuid.New(), upload.Extension)
	var url string

	err = saga.New("avatar_upload").
		Add(saga.Step{
			Name: "store_file",
			Run: func(ctx context.Context) error {
				stored, err := s.files.Put(ctx, key, bytes.NewReader(upload.Data))
				url = stored
				return err
			},
			Compensate: func(ctx context.Context) error {
				return s.files.Delete(ctx, key)
			},
		}).
		Add(saga.Step{
			Name: "update_profile",
			Run: func(ctx context.Context) error {
				return s.profiles.SetAvatar(ctx, identity.UserID, url)
			},
			Compensate: func(ctx context.Context) error {
				return s.profiles.SetAvatar(ctx, identity.UserID, previousURL)
			},
		}).
		Add(saga.Step{
			Name:       "delete_previous",
			BestEffort: true,
			Run: func(ctx context.Context) error {
				oldKey, ok := s.files.KeyFromURL(previousURL)
				if !ok {
					return nil
				}
				return s.files.Delete(ctx, oldKey)
			},
		}).
		Execute(ctx)
	if err != nil {
		if step, ok := saga.FailedStep(err); ok {
			op.set("failedStep", step)
		}
		return nil, domain.Internal("failed to upload avatar", err)
	}
	op.set("avatarUrl", url)

	current.AvatarURL = url
	current.UpdatedAt = s.now().UTC()
	return current, nil
}

// DeleteAvatar clears the caller's avatar. Removing the stored file is best effort.
func (s *ProfileService) DeleteAvatar(ctx context.Context, identity domain.Identity) (profile *domain.Profile, err error) {
	op := newOperation(actorFor(identity, nil), resourceAvatar, domain.ActionAvatarDeleted, domain.ActionAvatarFailed)
	op.set("operation", "delete")
	defer func() { op.finish(ctx, s.audit, err) }()

	profile, err = s.profiles.Ensure(ctx, identity.UserID, identity.Email)
	if err != nil {
		return nil, domain.Internal("failed to load profile", err)
	}
	previousURL := profile.AvatarURL
	if previousURL == "" {
		return profile, nil
	}

	err = saga.New("avatar_delete").
		Add(saga.Step{
			Name: "clear_profile",
			Run: func(ctx context.Context) error {
				return s.profiles.SetAvatar(ctx, identity.UserID, "")
			},
		}).
		Add(saga.Step{
			Name:       "delete_file",
			BestEffort: true,
			Run: func(ctx context.Context) error {
				key, ok := s.files.KeyFromURL(previousURL)
				if !ok {
					return nil
				}
				return s.files.Delete(ctx, key)
			},
		}).
		Execute(ctx)
	if err != nil {
		return nil, domain.Internal("failed to delete avatar", err)
	}

	profile.AvatarURL = ""
	profile.UpdatedAt = s.now().UTC()
	return profile, nil
}
