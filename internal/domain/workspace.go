package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlanTier is the billing tier of a workspace
type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanStarter    PlanTier = "starter"
	PlanPro        PlanTier = "pro"
	PlanEnterprise PlanTier = "enterprise"
)

// Workspace represents a tenant workspace
type Workspace struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	PlanTier  PlanTier       `json:"planTier"`
	IsActive  bool           `json:"isActive"`
	Settings  map[string]any `json:"settings,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// WorkspaceUpdate represents organization settings changes. Settings are
// merged into the stored settings rather than replacing them.
type WorkspaceUpdate struct {
	Name     *string        `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	PlanTier *PlanTier      `json:"planTier,omitempty" validate:"omitempty,oneof=free starter pro enterprise"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Empty reports whether the update carries no changes
func (u WorkspaceUpdate) Empty() bool {
	return u.Name == nil && u.PlanTier == nil && len(u.Settings) == 0
}

// Organization is the workspace as presented by the organization endpoint
type Organization struct {
	Workspace   Workspace `json:"workspace"`
	MemberCount int       `json:"memberCount"`
	Role        Role      `json:"role"`
}

// WorkspaceMember represents workspace membership
type WorkspaceMember struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspaceId"`
	UserID      uuid.UUID  `json:"userId"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"isActive"`
	InvitedBy   *uuid.UUID `json:"invitedBy,omitempty"`
	JoinedAt    time.Time  `json:"joinedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Profile     *Profile   `json:"profile,omitempty"`
}

// MemberUpdate represents a role or activation change on a membership
type MemberUpdate struct {
	Role     *Role `json:"role,omitempty" validate:"omitempty,oneof=owner admin member viewer"`
	IsActive *bool `json:"isActive,omitempty"`
}

// Empty reports whether the update carries no changes
func (u MemberUpdate) Empty() bool {
	return u.Role == nil && u.IsActive == nil
}

// Membership pairs a workspace with the caller's role in it
type Membership struct {
	Workspace Workspace `json:"workspace"`
	MemberID  uuid.UUID `json:"memberId"`
	Role      Role      `json:"role"`
}

// TeamFilter narrows the team listing
type TeamFilter struct {
	IncludeInactive bool
	Role            Role
	Page            PageRequest
}

// WorkspaceRepository defines the interface for workspace storage
type WorkspaceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
	Update(ctx context.Context, id uuid.UUID, update *WorkspaceUpdate) (*Workspace, error)
	CountActiveMembers(ctx context.Context, id uuid.UUID) (int, error)
}

// MemberRepository defines the interface for workspace membership storage
type MemberRepository interface {
	GetActiveMember(ctx context.Context, workspaceID, userID uuid.UUID) (*WorkspaceMember, error)
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*WorkspaceMember, error)
	FindByEmail(ctx context.Context, workspaceID uuid.UUID, email string) (*WorkspaceMember, error)
	List(ctx context.Context, workspaceID uuid.UUID, filter TeamFilter) ([]WorkspaceMember, int, error)
	Update(ctx context.Context, workspaceID, id uuid.UUID, update *MemberUpdate) (*WorkspaceMember, error)
	ListMemberships(ctx context.Context, userID uuid.UUID) ([]Membership, error)
}
