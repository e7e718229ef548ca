package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, email, full_name, phone, avatar_url, title, timezone, created_at, updated_at`

// ProfileRepository handles profile data access
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var _ domain.ProfileRepository = (*ProfileRepository)(nil)

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Phone,
		&p.AvatarURL,
		&p.Title,
		&p.Timezone,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves a profile by user id
func (r *ProfileRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(r.db.Pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// Ensure returns the profile, creating an empty one on first access
func (r *ProfileRepository) Ensure(ctx context.Context, id uuid.UUID, email string) (*domain.Profile, error) {
	insert := `
		INSERT INTO profiles (id, email, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.Pool.Exec(ctx, insert, id, email); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("profile %s missing after insert", id)
	}
	return p, nil
}

// Update applies the provided fields
func (r *ProfileRepository) Update(ctx context.Context, id uuid.UUID, update *domain.ProfileUpdate) (*domain.Profile, error) {
	query := `
		UPDATE profiles
		SET full_name = COALESCE($2, full_name),
		    phone = COALESCE($3, phone),
		    title = COALESCE($4, title),
		    timezone = COALESCE($5, timezone),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	p, err := scanProfile(r.db.Pool.QueryRow(ctx, query, id, update.FullName, update.Phone, update.Title, update.Timezone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

// SetAvatar replaces the avatar URL; an empty URL clears it
func (r *ProfileRepository) SetAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE profiles SET avatar_url = $2, updated_at = NOW() WHERE id = $1`, id, avatarURL)
	if err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("profile")
	}
	return nil
}
