package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const memberColumns = `wm.id, wm.workspace_id, wm.user_id, wm.role, wm.is_active, wm.invited_by, wm.joined_at, wm.created_at, wm.updated_at`

const memberProfileColumns = `COALESCE(p.email, ''), COALESCE(p.full_name, ''), COALESCE(p.avatar_url, '')`

// MemberRepository handles workspace membership data access
type MemberRepository struct {
	db *DB
}

// NewMemberRepository creates a new membership repository
func NewMemberRepository(db *DB) *MemberRepository {
	return &MemberRepository{db: db}
}

var _ domain.MemberRepository = (*MemberRepository)(nil)

func scanMember(row pgx.Row, withProfile bool, extra ...any) (*domain.WorkspaceMember, error) {
	var member domain.WorkspaceMember
	var role string
	var email, fullName, avatarURL string

	dest := []any{
		&member.ID,
		&member.WorkspaceID,
		&member.UserID,
		&role,
		&member.IsActive,
		&member.InvitedBy,
		&member.JoinedAt,
		&member.CreatedAt,
		&member.UpdatedAt,
	}
	if withProfile {
		dest = append(dest, &email, &fullName, &avatarURL)
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	member.Role = parsed

	if withProfile && email != "" {
		member.Profile = &domain.Profile{
			ID:        member.UserID,
			Email:     email,
			FullName:  fullName,
			AvatarURL: avatarURL,
		}
	}

	return &member, nil
}

// GetActiveMember returns the active membership of userID in an active workspace
func (r *MemberRepository) GetActiveMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM workspace_members wm
		INNER JOIN workspaces w ON w.id = wm.workspace_id
		WHERE wm.workspace_id = $1 AND wm.user_id = $2 AND wm.is_active AND w.is_active
	`

	member, err := scanMember(r.db.Pool.QueryRow(ctx, query, workspaceID, userID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// GetByID retrieves a membership of the workspace by its id
func (r *MemberRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.WorkspaceMember, error) {
	query := `
		SELECT ` + memberColumns + `, ` + memberProfileColumns + `
		FROM workspace_members wm
		LEFT JOIN profiles p ON p.id = wm.user_id
		WHERE wm.workspace_id = $1 AND wm.id = $2
	`

	member, err := scanMember(r.db.Pool.QueryRow(ctx, query, workspaceID, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// FindByEmail finds a membership (active or not) by the member's profile email
func (r *MemberRepository) FindByEmail(ctx context.Context, workspaceID uuid.UUID, email string) (*domain.WorkspaceMember, error) {
	query := `
		SELECT ` + memberColumns + `, ` + memberProfileColumns + `
		FROM workspace_members wm
		INNER JOIN profiles p ON p.id = wm.user_id
		WHERE wm.workspace_id = $1 AND lower(p.email) = lower($2)
	`

	member, err := scanMember(r.db.Pool.QueryRow(ctx, query, workspaceID, email), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find member by email: %w", err)
	}

	return member, nil
}

// List returns a page of the workspace's members and the total match count
func (r *MemberRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.TeamFilter) ([]domain.WorkspaceMember, int, error) {
	var where whereBuilder
	where.add("wm.workspace_id = ?", workspaceID)
	if !filter.IncludeInactive {
		where.raw("wm.is_active")
	}
	if filter.Role != "" {
		where.add("wm.role = ?", string(filter.Role))
	}

	query := `
		SELECT ` + memberColumns + `, ` + memberProfileColumns + `, COUNT(*) OVER()
		FROM workspace_members wm
		LEFT JOIN profiles p ON p.id = wm.user_id
		` + where.sql() + `
		ORDER BY wm.joined_at ASC, wm.id ASC
		` + where.page(filter.Page)

	rows, err := r.db.Pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []domain.WorkspaceMember{}
	total := 0
	for rows.Next() {
		member, err := scanMember(rows, true, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}

	if len(members) == 0 {
		if total, err = r.db.countPastPage(ctx, "workspace_members wm", &where, filter.Page); err != nil {
			return nil, 0, err
		}
	}

	return members, total, nil
}

// Update changes the role and/or active flag of a membership
func (r *MemberRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, update *domain.MemberUpdate) (*domain.WorkspaceMember, error) {
	query := `
		UPDATE workspace_members wm
		SET role = COALESCE($3, wm.role),
		    is_active = COALESCE($4, wm.is_active),
		    updated_at = NOW()
		WHERE wm.workspace_id = $1 AND wm.id = $2
		RETURNING ` + memberColumns

	member, err := scanMember(r.db.Pool.QueryRow(ctx, query, workspaceID, id, stringPtr(update.Role), update.IsActive), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return member, nil
}

// ListMemberships returns the user's active memberships in active workspaces
func (r *MemberRepository) ListMemberships(ctx context.Context, userID uuid.UUID) ([]domain.Membership, error) {
	query := `
		SELECT ` + workspaceColumns + `, wm.id, wm.role
		FROM workspaces w
		INNER JOIN workspace_members wm ON w.id = wm.workspace_id
		WHERE wm.user_id = $1 AND wm.is_active AND w.is_active
		ORDER BY wm.joined_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	memberships := []domain.Membership{}
	for rows.Next() {
		var memberID uuid.UUID
		var role string
		workspace, err := scanWorkspace(rows, &memberID, &role)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, domain.Membership{Workspace: *workspace, MemberID: memberID, Role: parsed})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	return memberships, nil
}
