package handler

import (
	"net/http"

	"github.com/Rrens/salespulse/internal/api/response"
	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/service"
)

// EODHandler handles end-of-day report endpoints
type EODHandler struct {
	eodService *service.EODService
}

// NewEODHandler creates a new EOD handler
func NewEODHandler(eodService *service.EODService) *EODHandler {
	return &EODHandler{eodService: eodService}
}

// eodFilter parses the listing query. userId is only read for managers;
// everyone else is scoped to their own reports by the service.
func eodFilter(r *http.Request, actor domain.Actor) (domain.EODFilter, error) {
	q := r.URL.Query()
	var filter domain.EODFilter
	var err error

	if actor.Role.IsManager() {
		if filter.UserID, err = queryUUID(q, "userId"); err != nil {
			return filter, err
		}
	}
	if filter.StartDate, err = queryDate(q, "startDate"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = queryDate(q, "endDate"); err != nil {
		return filter, err
	}
	if filter.Page, err = queryPage(q); err != nil {
		return filter, err
	}
	if filter.SortBy, filter.SortOrder, err = querySort(q, domain.EODSortColumns); err != nil {
		return filter, err
	}
	filter.Period = q.Get("period")

	return filter, nil
}

// Submit creates the caller's report for a date, or replaces it when one
// already exists. 201 on insert, 200 on update.
func (h *EODHandler) Submit(w http.ResponseWriter, r *http.Request, input domain.EODReportInput) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}

	report, created, err := h.eodService.Submit(r.Context(), actor, input)
	if err != nil {
		return err
	}

	if created {
		response.WithMessage(w, http.StatusCreated, report, "EOD report submitted")
		return nil
	}
	response.WithMessage(w, http.StatusOK, report, "EOD report updated")
	return nil
}

// List returns reports visible to the caller
func (h *EODHandler) List(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	filter, err := eodFilter(r, actor)
	if err != nil {
		return err
	}

	page, err := h.eodService.List(r.Context(), actor, filter)
	if err != nil {
		return err
	}

	response.OK(w, page)
	return nil
}

// Summary returns totals over the reports visible to the caller
func (h *EODHandler) Summary(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	filter, err := eodFilter(r, actor)
	if err != nil {
		return err
	}

	summary, err := h.eodService.Summary(r.Context(), actor, filter)
	if err != nil {
		return err
	}

	response.OK(w, summary)
	return nil
}

// Get returns a single report
func (h *EODHandler) Get(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	report, err := h.eodService.Get(r.Context(), actor, id)
	if err != nil {
		return err
	}

	response.OK(w, report)
	return nil
}

// Update applies a partial update to a report
func (h *EODHandler) Update(w http.ResponseWriter, r *http.Request, update domain.EODReportUpdate) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	report, err := h.eodService.Update(r.Context(), actor, id, update)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, report, "EOD report updated")
	return nil
}

// Delete removes a report
func (h *EODHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	if err := h.eodService.Delete(r.Context(), actor, id); err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, nil, "EOD report deleted")
	return nil
}
