package domain

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest is an offset pagination request
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit into their accepted ranges
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Pagination describes the page returned to the client
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes page metadata for total matching rows
func NewPagination(req PageRequest, total int) Pagination {
	n := req.Normalize()
	pages := 0
	if total > 0 {
		pages = (total + n.Limit - 1) / n.Limit
	}
	return Pagination{Page: n.Page, Limit: n.Limit, Total: total, TotalPages: pages}
}

// Page is a paginated list of items
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// SortOrder is asc or desc
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder returns the order for s, falling back to def
func ParseSortOrder(s string, def SortOrder) SortOrder {
	switch SortOrder(s) {
	case SortAsc, SortDesc:
		return SortOrder(s)
	default:
		return def
	}
}
