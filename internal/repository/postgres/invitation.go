package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const invitationColumns = `id, workspace_id, email, role, token_hash, invited_by, status, expires_at, accepted_at, created_at`

// InvitationRepository handles team invitation data access
type InvitationRepository struct {
	db *DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

var _ domain.InvitationRepository = (*InvitationRepository)(nil)

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var inv domain.Invitation
	var role, status string

	if err := row.Scan(
		&inv.ID,
		&inv.WorkspaceID,
		&inv.Email,
		&role,
		&inv.TokenHash,
		&inv.InvitedBy,
		&status,
		&inv.ExpiresAt,
		&inv.AcceptedAt,
		&inv.CreatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	inv.Role = parsed
	inv.Status = domain.InvitationStatus(status)

	return &inv, nil
}

// Create stores a new pending invitation. Stale pending invitations for the
// same address are expired first so they do not block re-inviting.
func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	expire := `
		UPDATE workspace_invitations
		SET status = 'expired'
		WHERE workspace_id = $1 AND lower(email) = lower($2) AND status = 'pending' AND expires_at <= NOW()
	`
	if _, err := tx.Exec(ctx, expire, inv.WorkspaceID, inv.Email); err != nil {
		return fmt.Errorf("failed to expire invitations: %w", err)
	}

	insert := `
		INSERT INTO workspace_invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, insert,
		inv.ID,
		inv.WorkspaceID,
		inv.Email,
		string(inv.Role),
		inv.TokenHash,
		inv.InvitedBy,
		string(inv.Status),
		inv.ExpiresAt,
		inv.AcceptedAt,
		inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("an invitation is already pending for this email")
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit invitation: %w", err)
	}
	return nil
}

// HasPending reports whether an unexpired pending invitation exists for email
func (r *InvitationRepository) HasPending(ctx context.Context, workspaceID uuid.UUID, email string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM workspace_invitations
			WHERE workspace_id = $1 AND lower(email) = lower($2) AND status = 'pending' AND expires_at > NOW()
		)
	`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, workspaceID, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check invitations: %w", err)
	}

	return exists, nil
}

// GetPendingByTokenHash finds a pending invitation by its token hash
func (r *InvitationRepository) GetPendingByTokenHash(ctx context.Context, tokenHash string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM workspace_invitations WHERE token_hash = $1 AND status = 'pending'`

	inv, err := scanInvitation(r.db.Pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// ListPending lists the workspace's unexpired pending invitations
func (r *InvitationRepository) ListPending(ctx context.Context, workspaceID uuid.UUID) ([]domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM workspace_invitations
		WHERE workspace_id = $1 AND status = 'pending' AND expires_at > NOW()
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := []domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}

	return invitations, rows.Err()
}

// Revoke cancels a pending invitation
func (r *InvitationRepository) Revoke(ctx context.Context, workspaceID, id uuid.UUID) (bool, error) {
	query := `
		UPDATE workspace_invitations SET status = 'revoked'
		WHERE workspace_id = $1 AND id = $2 AND status = 'pending'
	`

	tag, err := r.db.Pool.Exec(ctx, query, workspaceID, id)
	if err != nil {
		return false, fmt.Errorf("failed to revoke invitation: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Accept upserts the membership and consumes the invitation atomically
func (r *InvitationRepository) Accept(ctx context.Context, inv *domain.Invitation, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	consume := `
		UPDATE workspace_invitations SET status = 'accepted', accepted_at = NOW()
		WHERE id = $1 AND status = 'pending' AND expires_at > NOW()
	`
	tag, err := tx.Exec(ctx, consume, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.Conflict("invitation is no longer valid")
	}

	upsert := `
		INSERT INTO workspace_members AS wm (id, workspace_id, user_id, role, is_active, invited_by, joined_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, NOW(), NOW(), NOW())
		ON CONFLICT (workspace_id, user_id) DO UPDATE
		SET role = EXCLUDED.role,
		    is_active = TRUE,
		    invited_by = EXCLUDED.invited_by,
		    updated_at = NOW()
		RETURNING ` + memberColumns

	member, err := scanMember(tx.QueryRow(ctx, upsert, uuid.New(), inv.WorkspaceID, userID, string(inv.Role), inv.InvitedBy), false)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invitation acceptance: %w", err)
	}

	return member, nil
}
