package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format of report dates
const DateLayout = "2006-01-02"

// Mood is the self-reported mood on an end-of-day report
type Mood string

const (
	MoodGreat    Mood = "great"
	MoodGood     Mood = "good"
	MoodOkay     Mood = "okay"
	MoodBad      Mood = "bad"
	MoodTerrible Mood = "terrible"
)

// EODReport is one user's end-of-day submission for one date in one workspace
type EODReport struct {
	ID              uuid.UUID `json:"id"`
	WorkspaceID     uuid.UUID `json:"workspaceId"`
	UserID          uuid.UUID `json:"userId"`
	ReportDate      string    `json:"reportDate"`
	CallsMade       int       `json:"callsMade"`
	AppointmentsSet int       `json:"appointmentsSet"`
	SalesClosed     int       `json:"salesClosed"`
	Revenue         float64   `json:"revenue"`
	Notes           string    `json:"notes,omitempty"`
	Mood            Mood      `json:"mood,omitempty"`
	Challenges      string    `json:"challenges,omitempty"`
	Wins            string    `json:"wins,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// EODReportInput is the body of a report submission
type EODReportInput struct {
	ReportDate      string  `json:"reportDate" validate:"omitempty,datetime=2006-01-02"`
	CallsMade       int     `json:"callsMade" validate:"gte=0,lte=10000"`
	AppointmentsSet int     `json:"appointmentsSet" validate:"gte=0,lte=10000"`
	SalesClosed     int     `json:"salesClosed" validate:"gte=0,lte=10000"`
	Revenue         float64 `json:"revenue" validate:"gte=0,lte=100000000"`
	Notes           string  `json:"notes" validate:"max=5000"`
	Mood            Mood    `json:"mood" validate:"omitempty,oneof=great good okay bad terrible"`
	Challenges      string  `json:"challenges" validate:"max=5000"`
	Wins            string  `json:"wins" validate:"max=5000"`
}

// EODReportUpdate represents a partial report update
type EODReportUpdate struct {
	CallsMade       *int     `json:"callsMade,omitempty" validate:"omitempty,gte=0,lte=10000"`
	AppointmentsSet *int     `json:"appointmentsSet,omitempty" validate:"omitempty,gte=0,lte=10000"`
	SalesClosed     *int     `json:"salesClosed,omitempty" validate:"omitempty,gte=0,lte=10000"`
	Revenue         *float64 `json:"revenue,omitempty" validate:"omitempty,gte=0,lte=100000000"`
	Notes           *string  `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Mood            *Mood    `json:"mood,omitempty" validate:"omitempty,oneof=great good okay bad terrible"`
	Challenges      *string  `json:"challenges,omitempty" validate:"omitempty,max=5000"`
	Wins            *string  `json:"wins,omitempty" validate:"omitempty,max=5000"`
}

// Empty reports whether the update carries no changes
func (u EODReportUpdate) Empty() bool {
	return u.CallsMade == nil && u.AppointmentsSet == nil && u.SalesClosed == nil &&
		u.Revenue == nil && u.Notes == nil && u.Mood == nil && u.Challenges == nil && u.Wins == nil
}

// Relative periods accepted by the report listing
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
)

// PeriodStart returns the start of a relative period ending at now
func PeriodStart(period string, now time.Time) (time.Time, bool) {
	switch period {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), true
	case PeriodMonth:
		return now.AddDate(0, -1, 0), true
	case PeriodQuarter:
		return now.AddDate(0, -3, 0), true
	default:
		return time.Time{}, false
	}
}

// EODSortColumns maps accepted sortBy values to columns
var EODSortColumns = map[string]string{
	"report_date":      "report_date",
	"reportDate":       "report_date",
	"created_at":       "created_at",
	"createdAt":        "created_at",
	"revenue":          "revenue",
	"sales_closed":     "sales_closed",
	"salesClosed":      "sales_closed",
	"calls_made":       "calls_made",
	"callsMade":        "calls_made",
	"appointments_set": "appointments_set",
	"appointmentsSet":  "appointments_set",
}

// EODFilter narrows the report listing. UserID nil means every user in the
// workspace. A non-empty Period replaces StartDate.
type EODFilter struct {
	UserID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Period    string
	SortBy    string
	SortOrder SortOrder
	Page      PageRequest
}

// EODSummary aggregates the reports matching a filter
type EODSummary struct {
	ReportCount       int     `json:"reportCount"`
	TotalCalls        int     `json:"totalCalls"`
	TotalAppointments int     `json:"totalAppointments"`
	TotalSales        int     `json:"totalSales"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageRevenue    float64 `json:"averageRevenue"`
}

// EODRepository defines the interface for report storage
type EODRepository interface {
	// Upsert inserts the report or, when one exists for the same user,
	// workspace and date, overwrites it. created reports which happened.
	Upsert(ctx context.Context, report *EODReport) (created bool, err error)
	GetByID(ctx context.Context, workspaceID, id uuid.UUID, userID *uuid.UUID) (*EODReport, error)
	List(ctx context.Context, workspaceID uuid.UUID, filter EODFilter) ([]EODReport, int, error)
	Summary(ctx context.Context, workspaceID uuid.UUID, filter EODFilter) (*EODSummary, error)
	Update(ctx context.Context, workspaceID, id uuid.UUID, userID *uuid.UUID, update *EODReportUpdate) (*EODReport, error)
	Delete(ctx context.Context, workspaceID, id uuid.UUID) (bool, error)
}
