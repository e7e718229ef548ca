package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func invalidParam(field, message string) error {
	return domain.Invalid("invalid query parameters", domain.FieldError{Field: field, Message: message})
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.Invalid("invalid id", domain.FieldError{Field: name, Message: "must be a UUID"})
	}
	return id, nil
}

func queryPage(q url.Values) (domain.PageRequest, error) {
	page := domain.PageRequest{Page: 1, Limit: domain.DefaultPageLimit}

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, invalidParam("page", "must be an integer of at least 1")
		}
		page.Page = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > domain.MaxPageLimit {
			return page, invalidParam("limit", "must be an integer between 1 and 100")
		}
		page.Limit = n
	}
	return page, nil
}

func queryBool(q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalidParam(key, "must be true or false")
	}
	return v, nil
}

func queryDate(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return nil, invalidParam(key, "must be a date formatted as YYYY-MM-DD")
	}
	return &t, nil
}

func queryUUID(q url.Values, key string) (*uuid.UUID, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalidParam(key, "must be a UUID")
	}
	return &id, nil
}

func querySort(q url.Values, columns map[string]string) (string, domain.SortOrder, error) {
	sortBy := q.Get("sortBy")
	if sortBy != "" {
		if _, ok := columns[sortBy]; !ok {
			return "", "", invalidParam("sortBy", "unsupported sort column")
		}
	}

	order := strings.ToLower(q.Get("sortOrder"))
	switch domain.SortOrder(order) {
	case "", domain.SortAsc, domain.SortDesc:
	default:
		return "", "", invalidParam("sortOrder", "must be asc or desc")
	}
	return sortBy, domain.SortOrder(order), nil
}
