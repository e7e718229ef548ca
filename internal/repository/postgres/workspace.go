package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const workspaceColumns = `w.id, w.name, w.plan_tier, w.is_active, w.settings, w.created_at, w.updated_at`

// WorkspaceRepository handles workspace data access
type WorkspaceRepository struct {
	db *DB
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

var _ domain.WorkspaceRepository = (*WorkspaceRepository)(nil)

func scanWorkspace(row pgx.Row, extra ...any) (*domain.Workspace, error) {
	var workspace domain.Workspace
	var planTier string
	var settingsJSON []byte

	dest := append([]any{
		&workspace.ID,
		&workspace.Name,
		&planTier,
		&workspace.IsActive,
		&settingsJSON,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
	}, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	workspace.PlanTier = domain.PlanTier(planTier)
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &workspace.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}

	return &workspace, nil
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces w WHERE w.id = $1`

	workspace, err := scanWorkspace(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	return workspace, nil
}

// Update applies the provided fields. Settings keys are merged into the
// existing settings document.
func (r *WorkspaceRepository) Update(ctx context.Context, id uuid.UUID, update *domain.WorkspaceUpdate) (*domain.Workspace, error) {
	var settings []byte
	if len(update.Settings) > 0 {
		var err error
		settings, err = json.Marshal(update.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal settings: %w", err)
		}
	}

	query := `
		UPDATE workspaces w
		SET name = COALESCE($2, w.name),
		    plan_tier = COALESCE($3, w.plan_tier),
		    settings = w.settings || COALESCE($4::jsonb, '{}'::jsonb),
		    updated_at = NOW()
		WHERE w.id = $1
		RETURNING ` + workspaceColumns

	workspace, err := scanWorkspace(r.db.Pool.QueryRow(ctx, query, id, update.Name, stringPtr(update.PlanTier), settings))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	return workspace, nil
}

// CountActiveMembers counts the active memberships of a workspace
func (r *WorkspaceRepository) CountActiveMembers(ctx context.Context, id uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM workspace_members WHERE workspace_id = $1 AND is_active`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}
