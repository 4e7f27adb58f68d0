package service

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination normalises page and limit: non-positive values fall back to
// defaults and limit is capped at 100.
func NewPagination(page, limit int) Pagination {
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset returns the number of rows skipped before this page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// WithTotal fills Total and Pages (ceil(total / limit)).
func (p Pagination) WithTotal(total int) Pagination {
	p.Total = total
	p.Pages = (total + p.Limit - 1) / p.Limit
	return p
}
