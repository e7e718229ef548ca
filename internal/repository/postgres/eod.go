package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eodColumns = `id, workspace_id, user_id, report_date, calls_made, appointments_set, sales_closed, revenue, notes, mood, challenges, wins, created_at, updated_at`

// EODRepository handles end-of-day report data access
type EODRepository struct {
	db *DB
}

// NewEODRepository creates a new report repository
func NewEODRepository(db *DB) *EODRepository {
	return &EODRepository{db: db}
}

var _ domain.EODRepository = (*EODRepository)(nil)

func scanEOD(row pgx.Row, extra ...any) (*domain.EODReport, error) {
	var r domain.EODReport
	var reportDate time.Time
	var mood string

	dest := append([]any{
		&r.ID,
		&r.WorkspaceID,
		&r.UserID,
		&reportDate,
		&r.CallsMade,
		&r.AppointmentsSet,
		&r.SalesClosed,
		&r.Revenue,
		&r.Notes,
		&mood,
		&r.Challenges,
		&r.Wins,
		&r.CreatedAt,
		&r.UpdatedAt,
	}, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	r.ReportDate = reportDate.Format(domain.DateLayout)
	r.Mood = domain.Mood(mood)

	return &r, nil
}

// Upsert writes the report keyed on (user, workspace, date). xmax is zero
// only for a freshly inserted row.
func (r *EODRepository) Upsert(ctx context.Context, report *domain.EODReport) (bool, error) {
	query := `
		INSERT INTO eod_reports (` + eodColumns + `)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (user_id, workspace_id, report_date) DO UPDATE
		SET calls_made = EXCLUDED.calls_made,
		    appointments_set = EXCLUDED.appointments_set,
		    sales_closed = EXCLUDED.sales_closed,
		    revenue = EXCLUDED.revenue,
		    notes = EXCLUDED.notes,
		    mood = EXCLUDED.mood,
		    challenges = EXCLUDED.challenges,
		    wins = EXCLUDED.wins,
		    updated_at = NOW()
		RETURNING ` + eodColumns + `, (xmax = 0) AS inserted
	`

	var inserted bool
	saved, err := scanEOD(r.db.Pool.QueryRow(ctx, query,
		report.ID,
		report.WorkspaceID,
		report.UserID,
		report.ReportDate,
		report.CallsMade,
		report.AppointmentsSet,
		report.SalesClosed,
		report.Revenue,
		report.Notes,
		string(report.Mood),
		report.Challenges,
		report.Wins,
	), &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert report: %w", err)
	}

	*report = *saved
	return inserted, nil
}

// GetByID retrieves a report. A non-nil userID restricts it to that author.
func (r *EODRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID, userID *uuid.UUID) (*domain.EODReport, error) {
	query := `
		SELECT ` + eodColumns + ` FROM eod_reports
		WHERE workspace_id = $1 AND id = $2 AND ($3::uuid IS NULL OR user_id = $3)
	`

	report, err := scanEOD(r.db.Pool.QueryRow(ctx, query, workspaceID, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

func eodWhere(workspaceID uuid.UUID, filter domain.EODFilter) *whereBuilder {
	where := &whereBuilder{}
	where.add("workspace_id = ?", workspaceID)
	if filter.UserID != nil {
		where.add("user_id = ?", *filter.UserID)
	}
	if filter.StartDate != nil {
		where.add("report_date >= ?::date", filter.StartDate.Format(domain.DateLayout))
	}
	if filter.EndDate != nil {
		where.add("report_date <= ?::date", filter.EndDate.Format(domain.DateLayout))
	}
	return where
}

// List returns a page of reports and the total match count
func (r *EODRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.EODFilter) ([]domain.EODReport, int, error) {
	where := eodWhere(workspaceID, filter)

	query := `
		SELECT ` + eodColumns + `, COUNT(*) OVER()
		FROM eod_reports
		` + where.sql() + `
		` + orderBy(domain.EODSortColumns, filter.SortBy, "report_date", filter.SortOrder) + `
		` + where.page(filter.Page)

	rows, err := r.db.Pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.EODReport{}
	total := 0
	for rows.Next() {
		report, err := scanEOD(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}

	if len(reports) == 0 {
		if total, err = r.db.countPastPage(ctx, "eod_reports", where, filter.Page); err != nil {
			return nil, 0, err
		}
	}

	return reports, total, nil
}

// Summary aggregates every report matching the filter, ignoring paging
func (r *EODRepository) Summary(ctx context.Context, workspaceID uuid.UUID, filter domain.EODFilter) (*domain.EODSummary, error) {
	where := eodWhere(workspaceID, filter)

	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(calls_made), 0),
		       COALESCE(SUM(appointments_set), 0),
		       COALESCE(SUM(sales_closed), 0),
		       COALESCE(SUM(revenue), 0)::float8
		FROM eod_reports
		` + where.sql()

	var s domain.EODSummary
	err := r.db.Pool.QueryRow(ctx, query, where.args...).Scan(
		&s.ReportCount,
		&s.TotalCalls,
		&s.TotalAppointments,
		&s.TotalSales,
		&s.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize reports: %w", err)
	}
	if s.ReportCount > 0 {
		s.AverageRevenue = s.TotalRevenue / float64(s.ReportCount)
	}

	return &s, nil
}

// Update applies a partial update. A non-nil userID restricts it to that author.
func (r *EODRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, userID *uuid.UUID, update *domain.EODReportUpdate) (*domain.EODReport, error) {
	query := `
		UPDATE eod_reports
		SET calls_made = COALESCE($4, calls_made),
		    appointments_set = COALESCE($5, appointments_set),
		    sales_closed = COALESCE($6, sales_closed),
		    revenue = COALESCE($7, revenue),
		    notes = COALESCE($8, notes),
		    mood = COALESCE($9, mood),
		    challenges = COALESCE($10, challenges),
		    wins = COALESCE($11, wins),
		    updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND ($3::uuid IS NULL OR user_id = $3)
		RETURNING ` + eodColumns

	report, err := scanEOD(r.db.Pool.QueryRow(ctx, query,
		workspaceID,
		id,
		userID,
		update.CallsMade,
		update.AppointmentsSet,
		update.SalesClosed,
		update.Revenue,
		update.Notes,
		stringPtr(update.Mood),
		update.Challenges,
		update.Wins,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	return report, nil
}

// Delete removes a report. It reports false when nothing matched.
func (r *EODRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM eod_reports WHERE workspace_id = $1 AND id = $2`, workspaceID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete report: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
