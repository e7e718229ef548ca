package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"net/netip"

	"github.com/Rrens/salespulse/internal/domain"
)

// SecurityEventRepository appends audit records
type SecurityEventRepository struct {
	db *DB
}

// NewSecurityEventRepository creates a new audit repository
func NewSecurityEventRepository(db *DB) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

var _ domain.SecurityEventRepository = (*SecurityEventRepository)(nil)

// Insert stores one event. The IP column is inet, so an unparsable
// address is stored as NULL.
func (r *SecurityEventRepository) Insert(ctx context.Context, event *domain.SecurityEvent) error {
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	ip := event.IPAddress
	if _, err := netip.ParseAddr(ip); err != nil {
		ip = ""
	}

	query := `
		INSERT INTO security_events (id, user_id, workspace_id, action, resource, metadata, ip_address, user_agent, severity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::inet, $8, $9, $10)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		event.ID,
		event.UserID,
		event.WorkspaceID,
		event.Action,
		event.Resource,
		metadata,
		ip,
		event.UserAgent,
		string(event.Severity),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert security event: %w", err)
	}

	return nil
}
