package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Severity grades a security event
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// SecurityEvent is an append-only audit record
type SecurityEvent struct {
	ID          uuid.UUID      `json:"id"`
	UserID      *uuid.UUID     `json:"userId,omitempty"`
	WorkspaceID *uuid.UUID     `json:"workspaceId,omitempty"`
	Action      string         `json:"action"`
	Resource    string         `json:"resource"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IPAddress   string         `json:"ipAddress,omitempty"`
	UserAgent   string         `json:"userAgent,omitempty"`
	Severity    Severity       `json:"severity"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Audit actions
const (
	ActionEODReportCreated  = "EOD_REPORT_CREATED"
	ActionEODReportUpdated  = "EOD_REPORT_UPDATED"
	ActionEODReportViewed   = "EOD_REPORT_VIEWED"
	ActionEODReportsListed  = "EOD_REPORTS_LISTED"
	ActionEODSummaryViewed  = "EOD_SUMMARY_VIEWED"
	ActionEODReportDeleted  = "EOD_REPORT_DELETED"
	ActionEODReportFailed   = "EOD_REPORT_FAILED"
	ActionProductCreated    = "PRODUCT_CREATED"
	ActionProductUpdated    = "PRODUCT_UPDATED"
	ActionProductDeleted    = "PRODUCT_DELETED"
	ActionProductViewed     = "PRODUCT_VIEWED"
	ActionProductsListed    = "PRODUCTS_LISTED"
	ActionProductFailed     = "PRODUCT_OPERATION_FAILED"
	ActionTeamListed        = "TEAM_MEMBERS_LISTED"
	ActionTeamMemberViewed  = "TEAM_MEMBER_VIEWED"
	ActionTeamMemberUpdated = "TEAM_MEMBER_UPDATED"
	ActionTeamMemberRemoved = "TEAM_MEMBER_REMOVED"
	ActionTeamFailed        = "TEAM_OPERATION_FAILED"
	ActionInvitationSent    = "INVITATION_SENT"
	ActionInvitationRevoked = "INVITATION_REVOKED"
	ActionInvitationListed  = "INVITATIONS_LISTED"
	ActionInvitationAccept  = "INVITATION_ACCEPTED"
	ActionInvitationFailed  = "INVITATION_FAILED"
	ActionProfileViewed     = "PROFILE_VIEWED"
	ActionProfileUpdated    = "PROFILE_UPDATED"
	ActionProfileFailed     = "PROFILE_OPERATION_FAILED"
	ActionAvatarUploaded    = "AVATAR_UPLOADED"
	ActionAvatarDeleted     = "AVATAR_DELETED"
	ActionAvatarFailed      = "AVATAR_OPERATION_FAILED"
	ActionOrgViewed         = "ORGANIZATION_VIEWED"
	ActionOrgUpdated        = "ORGANIZATION_UPDATED"
	ActionOrgFailed         = "ORGANIZATION_OPERATION_FAILED"
	ActionWorkspacesListed  = "WORKSPACES_LISTED"
	ActionAuthFailed        = "AUTHENTICATION_FAILED"
	ActionAccessDenied      = "ACCESS_DENIED"
	ActionRateLimited       = "RATE_LIMIT_EXCEEDED"
)

// SecurityEventRepository defines the interface for audit storage
type SecurityEventRepository interface {
	Insert(ctx context.Context, event *SecurityEvent) error
}
