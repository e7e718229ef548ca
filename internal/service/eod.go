package service

import (
	"context"
	"time"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
)

const resourceEODReport = "eod_report"

// EODService handles end-of-day report operations
type EODService struct {
	reports domain.EODRepository
	audit   Auditor
	now     func() time.Time
}

// NewEODService creates a new report service
func NewEODService(reports domain.EODRepository, auditor Auditor) *EODService {
	return &EODService{
		reports: reports,
		audit:   auditor,
		now:     time.Now,
	}
}

// Submit stores the caller's report for its date. A second submission for
// the same date overwrites the first; created reports which happened.
func (s *EODService) Submit(ctx context.Context, actor domain.Actor, input domain.EODReportInput) (report *domain.EODReport, created bool, err error) {
	op := newOperation(actor, resourceEODReport, domain.ActionEODReportUpdated, domain.ActionEODReportFailed)
	op.set("operation", "submit")
	defer func() { op.finish(ctx, s.audit, err) }()

	reportDate := input.ReportDate
	if reportDate == "" {
		reportDate = s.now().UTC().Format(domain.DateLayout)
	}
	if _, perr := time.Parse(domain.DateLayout, reportDate); perr != nil {
		return nil, false, domain.Invalid("invalid report date", domain.FieldError{Field: "reportDate", Message: "must be a date in YYYY-MM-DD format"})
	}
	op.set("reportDate", reportDate)

	report = &domain.EODReport{
		ID:              uuid.New(),
		WorkspaceID:     actor.WorkspaceID,
		UserID:          actor.UserID,
		ReportDate:      reportDate,
		CallsMade:       input.CallsMade,
		AppointmentsSet: input.AppointmentsSet,
		SalesClosed:     input.SalesClosed,
		Revenue:         input.Revenue,
		Notes:           input.Notes,
		Mood:            input.Mood,
		Challenges:      input.Challenges,
		Wins:            input.Wins,
	}

	created, err = s.reports.Upsert(ctx, report)
	if err != nil {
		return nil, false, domain.Internal("failed to save report", err)
	}
	if created {
		op.success = domain.ActionEODReportCreated
	}
	op.set("reportId", report.ID.String())

	return report, created, nil
}

// scope applies role visibility and resolves the relative period
func (s *EODService) scope(actor domain.Actor, filter domain.EODFilter) (domain.EODFilter, error) {
	if own := scopedUser(actor); own != nil {
		filter.UserID = own
	}

	if filter.Period != "" {
		start, ok := domain.PeriodStart(filter.Period, s.now().UTC())
		if !ok {
			return filter, domain.Invalid("invalid period", domain.FieldError{Field: "period", Message: "must be one of week, month, quarter"})
		}
		filter.StartDate = &start
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, domain.Invalid("invalid date range", domain.FieldError{Field: "endDate", Message: "must not be before startDate"})
	}

	filter.Page = filter.Page.Normalize()
	filter.SortOrder = domain.ParseSortOrder(string(filter.SortOrder), domain.SortDesc)
	return filter, nil
}

// List returns the reports visible to the caller. Members and viewers only
// ever see their own reports regardless of the requested user.
func (s *EODService) List(ctx context.Context, actor domain.Actor, filter domain.EODFilter) (page *domain.Page[domain.EODReport], err error) {
	op := newOperation(actor, resourceEODReport, domain.ActionEODReportsListed, domain.ActionEODReportFailed)
	op.set("operation", "list")
	defer func() { op.finish(ctx, s.audit, err) }()

	filter, err = s.scope(actor, filter)
	if err != nil {
		return nil, err
	}
	if filter.UserID != nil {
		op.set("userId", filter.UserID.String())
	}

	reports, total, err := s.reports.List(ctx, actor.WorkspaceID, filter)
	if err != nil {
		return nil, domain.Internal("failed to list reports", err)
	}
	op.set("count", len(reports))

	return &domain.Page[domain.EODReport]{Items: reports, Pagination: domain.NewPagination(filter.Page, total)}, nil
}

// Summary aggregates the reports visible to the caller
func (s *EODService) Summary(ctx context.Context, actor domain.Actor, filter domain.EODFilter) (summary *domain.EODSummary, err error) {
	op := newOperation(actor, resourceEODReport, domain.ActionEODSummaryViewed, domain.ActionEODReportFailed)
	op.set("operation", "summary")
	defer func() { op.finish(ctx, s.audit, err) }()

	filter, err = s.scope(actor, filter)
	if err != nil {
		return nil, err
	}

	summary, err = s.reports.Summary(ctx, actor.WorkspaceID, filter)
	if err != nil {
		return nil, domain.Internal("failed to summarize reports", err)
	}

	return summary, nil
}

// Get retrieves one report
func (s *EODService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (report *domain.EODReport, err error) {
	op := newOperation(actor, resourceEODReport, domain.ActionEODReportViewed, domain.ActionEODReportFailed)
	op.set("operation", "get")
	op.set("reportId", id.String())
	defer func() { op.finish(ctx, s.audit, err) }()

	report, err = s.reports.GetByID(ctx, actor.WorkspaceID, id, scopedUser(actor))
	if err != nil {
		return nil, domain.Internal("failed to get report", err)
	}
	if report == nil {
		return nil, domain.NotFound("report")
	}

	return report, nil
}

// Update applies a partial update to a report the caller may edit
func (s *EODService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, update domain.EODReportUpdate) (report *domain.EODReport, err error) {
	op := newOperation(actor, resourceEODReport, domain.ActionEODReportUpdated, domain.ActionEODReportFailed)
	op.set("operation", "update")
	op.set("reportId", id.String())
	defer func() { op.finish(ctx, s.audit, err) }()

	if update.Empty() {
		return nil, domain.Invalid("no fields to update")
	}

	report, err = s.reports.Update(ctx, actor.WorkspaceID, id, scopedUser(actor), &update)
	if err != nil {
		return nil, domain.Internal("failed to update report", err)
	}
	if report == nil {
		return nil, domain.NotFound("report")
	}

	return report, nil
}

// Delete removes a report. Only managers reach this through the router.
func (s *EODService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (err error) {
	op := newOperation(actor, resourceEODReport, domain.ActionEODReportDeleted, domain.ActionEODReportFailed)
	op.set("operation", "delete")
	op.set("reportId", id.String())
	defer func() { op.finish(ctx, s.audit, err) }()

	if !actor.Role.IsManager() {
		return domain.Forbidden("insufficient permissions")
	}

	deleted, err := s.reports.Delete(ctx, actor.WorkspaceID, id)
	if err != nil {
		return domain.Internal("failed to delete report", err)
	}
	if !deleted {
		return domain.NotFound("report")
	}

	return nil
}
