package service

import (
	"context"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
)

// Auditor records security events. Implementations must not block.
type Auditor interface {
	Log(ctx context.Context, event domain.SecurityEvent, severity domain.Severity)
}

// operation collects what one service call reports to the audit log. Every
// call finishes exactly one operation, with the success action when err is
// nil and the failure action otherwise.
type operation struct {
	userID      uuid.UUID
	workspaceID uuid.UUID
	resource    string
	success     string
	failure     string
	metadata    map[string]any
}

func newOperation(actor domain.Actor, resource, success, failure string) *operation {
	return &operation{
		userID:      actor.UserID,
		workspaceID: actor.WorkspaceID,
		resource:    resource,
		success:     success,
		failure:     failure,
		metadata:    map[string]any{},
	}
}

func (o *operation) set(key string, value any) {
	o.metadata[key] = value
}

func (o *operation) finish(ctx context.Context, auditor Auditor, err error) {
	if auditor == nil {
		return
	}

	event := domain.SecurityEvent{
		Action:   o.success,
		Resource: o.resource,
		Metadata: o.metadata,
	}
	if o.userID != uuid.Nil {
		id := o.userID
		event.UserID = &id
	}
	if o.workspaceID != uuid.Nil {
		id := o.workspaceID
		event.WorkspaceID = &id
	}

	severity := domain.SeverityInfo
	if err != nil {
		event.Action = o.failure
		event.Metadata["error"] = err.Error()
		event.Metadata["errorKind"] = string(domain.KindOf(err))
		severity = failureSeverity(err)
	}

	auditor.Log(ctx, event, severity)
}

func failureSeverity(err error) domain.Severity {
	if domain.KindOf(err) == domain.KindInternal {
		return domain.SeverityError
	}
	return domain.SeverityWarning
}

// scopedUser returns nil for managers, who see every user's rows, and the
// caller's own id for everyone else.
func scopedUser(actor domain.Actor) *uuid.UUID {
	if actor.Role.IsManager() {
		return nil
	}
	id := actor.UserID
	return &id
}
