package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Identity is a verified session holder, before any workspace is resolved
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Actor is an authenticated user acting inside one workspace
type Actor struct {
	UserID      uuid.UUID
	Email       string
	WorkspaceID uuid.UUID
	MemberID    uuid.UUID
	Role        Role
}

// Identity returns the session part of the actor
func (a Actor) Identity() Identity {
	return Identity{UserID: a.UserID, Email: a.Email}
}

// Profile represents a platform user's profile. The id is the auth provider's user id.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Title     string    `json:"title,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate represents profile update data
type ProfileUpdate struct {
	FullName *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=120"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Title    *string `json:"title,omitempty" validate:"omitempty,max=120"`
	Timezone *string `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

// Empty reports whether the update carries no changes
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.Phone == nil && u.Title == nil && u.Timezone == nil
}

// ProfileView is the profile together with the current workspace context
type ProfileView struct {
	Profile   Profile    `json:"profile"`
	Workspace *Workspace `json:"workspace,omitempty"`
	Role      Role       `json:"role,omitempty"`
}

// ProfileRepository defines the interface for profile storage
type ProfileRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	Ensure(ctx context.Context, id uuid.UUID, email string) (*Profile, error)
	Update(ctx context.Context, id uuid.UUID, update *ProfileUpdate) (*Profile, error)
	SetAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
}
