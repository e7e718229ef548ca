package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEODService(repo *MockEODRepository, auditor *recordingAuditor, now time.Time) *EODService {
	svc := NewEODService(repo, auditor)
	svc.now = func() time.Time { return now }
	return svc
}

func TestEODService_SubmitIsIdempotentByDate(t *testing.T) {
	repo := new(MockEODRepository)
	auditor := &recordingAuditor{}
	svc := newEODService(repo, auditor, time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC))

	ctx := context.Background()
	actor := actorWith(domain.RoleMember)

	sameDay := mock.MatchedBy(func(r *domain.EODReport) bool {
		return r.ReportDate == "2024-05-01" && r.UserID == actor.UserID && r.WorkspaceID == actor.WorkspaceID
	})
	repo.On("Upsert", ctx, sameDay).Return(true, nil).Once()
	repo.On("Upsert", ctx, sameDay).Return(false, nil).Once()

	_, created, err := svc.Submit(ctx, actor, domain.EODReportInput{ReportDate: "2024-05-01", CallsMade: 10})
	require.NoError(t, err)
	assert.True(t, created)

	report, created, err := svc.Submit(ctx, actor, domain.EODReportInput{ReportDate: "2024-05-01", CallsMade: 25})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 25, report.CallsMade)

	assert.Equal(t, []string{domain.ActionEODReportCreated, domain.ActionEODReportUpdated}, auditor.actions())
	repo.AssertExpectations(t)
}

func TestEODService_SubmitDefaultsToToday(t *testing.T) {
	repo := new(MockEODRepository)
	svc := newEODService(repo, &recordingAuditor{}, time.Date(2024, 5, 2, 23, 30, 0, 0, time.UTC))

	ctx := context.Background()
	repo.On("Upsert", ctx, mock.MatchedBy(func(r *domain.EODReport) bool {
		return r.ReportDate == "2024-05-02"
	})).Return(true, nil)

	report, _, err := svc.Submit(ctx, actorWith(domain.RoleAdmin), domain.EODReportInput{})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", report.ReportDate)
}

func TestEODService_SubmitFailureIsAudited(t *testing.T) {
	repo := new(MockEODRepository)
	auditor := &recordingAuditor{}
	svc := newEODService(repo, auditor, time.Now())

	ctx := context.Background()
	repo.On("Upsert", ctx, mock.Anything).Return(false, errors.New("connection reset"))

	_, _, err := svc.Submit(ctx, actorWith(domain.RoleMember), domain.EODReportInput{ReportDate: "2024-05-01"})
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	require.Len(t, auditor.events, 1)
	event := auditor.last()
	assert.Equal(t, domain.ActionEODReportFailed, event.Action)
	assert.Equal(t, domain.SeverityError, event.Severity)
	assert.Contains(t, event.Metadata["error"], "connection reset")
}

func TestEODService_ListScopesByRole(t *testing.T) {
	ctx := context.Background()
	other := uuid.New()

	t.Run("member userId filter is ignored", func(t *testing.T) {
		repo := new(MockEODRepository)
		svc := newEODService(repo, &recordingAuditor{}, time.Now())
		actor := actorWith(domain.RoleMember)

		repo.On("List", ctx, actor.WorkspaceID, mock.MatchedBy(func(f domain.EODFilter) bool {
			return f.UserID != nil && *f.UserID == actor.UserID
		})).Return([]domain.EODReport{{UserID: actor.UserID}}, 1, nil)

		page, err := svc.List(ctx, actor, domain.EODFilter{UserID: &other})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, actor.UserID, page.Items[0].UserID)
		repo.AssertExpectations(t)
	})

	t.Run("viewer sees only own reports", func(t *testing.T) {
		repo := new(MockEODRepository)
		svc := newEODService(repo, &recordingAuditor{}, time.Now())
		actor := actorWith(domain.RoleViewer)

		repo.On("List", ctx, actor.WorkspaceID, mock.MatchedBy(func(f domain.EODFilter) bool {
			return f.UserID != nil && *f.UserID == actor.UserID
		})).Return([]domain.EODReport{}, 0, nil)

		_, err := svc.List(ctx, actor, domain.EODFilter{})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("admin may filter by any user", func(t *testing.T) {
		repo := new(MockEODRepository)
		svc := newEODService(repo, &recordingAuditor{}, time.Now())
		actor := actorWith(domain.RoleAdmin)

		repo.On("List", ctx, actor.WorkspaceID, mock.MatchedBy(func(f domain.EODFilter) bool {
			return f.UserID != nil && *f.UserID == other
		})).Return([]domain.EODReport{}, 0, nil)

		_, err := svc.List(ctx, actor, domain.EODFilter{UserID: &other})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("owner without filter sees everyone", func(t *testing.T) {
		repo := new(MockEODRepository)
		svc := newEODService(repo, &recordingAuditor{}, time.Now())
		actor := actorWith(domain.RoleOwner)

		repo.On("List", ctx, actor.WorkspaceID, mock.MatchedBy(func(f domain.EODFilter) bool {
			return f.UserID == nil
		})).Return([]domain.EODReport{}, 0, nil)

		_, err := svc.List(ctx, actor, domain.EODFilter{})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestEODService_ListPeriodAndPagination(t *testing.T) {
	repo := new(MockEODRepository)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	svc := newEODService(repo, &recordingAuditor{}, now)

	ctx := context.Background()
	actor := actorWith(domain.RoleAdmin)
	ignored := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		start  time.Time
	}{
		{domain.PeriodWeek, now.AddDate(0, 0, -7)},
		{domain.PeriodMonth, now.AddDate(0, -1, 0)},
		{domain.PeriodQuarter, now.AddDate(0, -3, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			start := tt.start
			repo.On("List", ctx, actor.WorkspaceID, mock.MatchedBy(func(f domain.EODFilter) bool {
				return f.StartDate != nil && f.StartDate.Equal(start)
			})).Return([]domain.EODReport{}, 45, nil).Once()

			page, err := svc.List(ctx, actor, domain.EODFilter{
				Period:    tt.period,
				StartDate: &ignored,
				Page:      domain.PageRequest{Page: 2, Limit: 20},
			})
			require.NoError(t, err)
			assert.Equal(t, domain.Pagination{Page: 2, Limit: 20, Total: 45, TotalPages: 3}, page.Pagination)
		})
	}

	t.Run("unknown period", func(t *testing.T) {
		_, err := svc.List(ctx, actor, domain.EODFilter{Period: "decade"})
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	repo.AssertExpectations(t)
}

func TestEODService_GetScopedAndNotFound(t *testing.T) {
	repo := new(MockEODRepository)
	auditor := &recordingAuditor{}
	svc := newEODService(repo, auditor, time.Now())

	ctx := context.Background()
	actor := actorWith(domain.RoleMember)
	id := uuid.New()

	repo.On("GetByID", ctx, actor.WorkspaceID, id, &actor.UserID).Return(nil, nil)

	_, err := svc.Get(ctx, actor, id)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Equal(t, []string{domain.ActionEODReportFailed}, auditor.actions())
	assert.Equal(t, "report not found", auditor.last().Metadata["error"])
}

func TestEODService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("empty update", func(t *testing.T) {
		svc := newEODService(new(MockEODRepository), &recordingAuditor{}, time.Now())
		_, err := svc.Update(ctx, actorWith(domain.RoleMember), uuid.New(), domain.EODReportUpdate{})
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("admin updates any report", func(t *testing.T) {
		repo := new(MockEODRepository)
		svc := newEODService(repo, &recordingAuditor{}, time.Now())
		actor := actorWith(domain.RoleAdmin)
		id := uuid.New()
		calls := 7

		repo.On("Update", ctx, actor.WorkspaceID, id, (*uuid.UUID)(nil), mock.Anything).
			Return(&domain.EODReport{ID: id, CallsMade: calls}, nil)

		report, err := svc.Update(ctx, actor, id, domain.EODReportUpdate{CallsMade: &calls})
		require.NoError(t, err)
		assert.Equal(t, calls, report.CallsMade)
	})
}

func TestEODService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("member is forbidden", func(t *testing.T) {
		repo := new(MockEODRepository)
		auditor := &recordingAuditor{}
		svc := newEODService(repo, auditor, time.Now())

		err := svc.Delete(ctx, actorWith(domain.RoleMember), uuid.New())
		assert.True(t, domain.IsKind(err, domain.KindAuthorization))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, []string{domain.ActionEODReportFailed}, auditor.actions())
	})

	t.Run("missing report", func(t *testing.T) {
		repo := new(MockEODRepository)
		svc := newEODService(repo, &recordingAuditor{}, time.Now())
		actor := actorWith(domain.RoleOwner)
		id := uuid.New()

		repo.On("Delete", ctx, actor.WorkspaceID, id).Return(false, nil)

		err := svc.Delete(ctx, actor, id)
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})

	t.Run("owner deletes", func(t *testing.T) {
		repo := new(MockEODRepository)
		auditor := &recordingAuditor{}
		svc := newEODService(repo, auditor, time.Now())
		actor := actorWith(domain.RoleOwner)
		id := uuid.New()

		repo.On("Delete", ctx, actor.WorkspaceID, id).Return(true, nil)

		require.NoError(t, svc.Delete(ctx, actor, id))
		assert.Equal(t, []string{domain.ActionEODReportDeleted}, auditor.actions())
	})
}

func TestEODService_Summary(t *testing.T) {
	repo := new(MockEODRepository)
	svc := newEODService(repo, &recordingAuditor{}, time.Now())

	ctx := context.Background()
	actor := actorWith(domain.RoleMember)
	expected := &domain.EODSummary{ReportCount: 2, TotalRevenue: 300, AverageRevenue: 150}

	repo.On("Summary", ctx, actor.WorkspaceID, mock.MatchedBy(func(f domain.EODFilter) bool {
		return f.UserID != nil && *f.UserID == actor.UserID
	})).Return(expected, nil)

	got, err := svc.Summary(ctx, actor, domain.EODFilter{})
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}
