package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the lifecycle state of a team invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation invites an email address into a workspace with a role
type Invitation struct {
	ID          uuid.UUID        `json:"id"`
	WorkspaceID uuid.UUID        `json:"workspaceId"`
	Email       string           `json:"email"`
	Role        Role             `json:"role"`
	TokenHash   string           `json:"-"`
	InvitedBy   uuid.UUID        `json:"invitedBy"`
	Status      InvitationStatus `json:"status"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	AcceptedAt  *time.Time       `json:"acceptedAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	// Token is only populated in the response to the invite request
	Token string `json:"token,omitempty"`
}

// Expired reports whether the invitation can no longer be accepted
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// InvitationCreate represents an invite request
type InvitationCreate struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Role  Role   `json:"role" validate:"required,oneof=owner admin member viewer"`
}

// InvitationAccept carries the token from the invite link
type InvitationAccept struct {
	Token string `json:"token" validate:"required,len=64,hexadecimal"`
}

// InvitationRepository defines the interface for invitation storage
type InvitationRepository interface {
	Create(ctx context.Context, invitation *Invitation) error
	HasPending(ctx context.Context, workspaceID uuid.UUID, email string) (bool, error)
	GetPendingByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error)
	ListPending(ctx context.Context, workspaceID uuid.UUID) ([]Invitation, error)
	Revoke(ctx context.Context, workspaceID, id uuid.UUID) (bool, error)
	// Accept activates (or creates) the membership and marks the invitation
	// accepted in one transaction.
	Accept(ctx context.Context, invitation *Invitation, userID uuid.UUID) (*WorkspaceMember, error)
}
