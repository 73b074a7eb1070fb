// AngelaMos | 2026
// query.go

package core

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	defaultPageSize = 10
	maxPageSize     = 100
)

// ListParams holds the json-server style query options shared by every
// collection: q, _page, _limit, _sort and _order. Page 0 means the whole
// result set is returned.
type ListParams struct {
	Query string
	Page  int
	Limit int
	Sort  string
	Order string
}

// ParseListParams reads the common list options. Sort fields outside
// sortable are dropped so they never reach a query.
func ParseListParams(r *http.Request, sortable ...string) ListParams {
	q := r.URL.Query()

	p := ListParams{
		Query: strings.TrimSpace(q.Get("q")),
		Page:  parseIntQuery(q.Get("_page")),
		Limit: parseIntQuery(q.Get("_limit")),
		Sort:  q.Get("_sort"),
		Order: strings.ToLower(q.Get("_order")),
	}

	allowed := false
	for _, s := range sortable {
		if p.Sort == s {
			allowed = true
			break
		}
	}
	if !allowed {
		p.Sort = ""
	}

	p.Normalize()
	return p
}

func (p *ListParams) Normalize() {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Limit < 0 {
		p.Limit = 0
	}
	if p.Limit > 0 && p.Page == 0 {
		p.Page = 1
	}
	if p.Page > 0 && p.Limit == 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Order != SortDesc {
		p.Order = SortAsc
	}
}

func (p ListParams) Paginated() bool {
	return p.Page > 0
}

func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

func (p ListParams) Descending() bool {
	return p.Order == SortDesc
}

// TotalHeader is the value List should expose for a result of total rows:
// the count when paginated, -1 (no header) otherwise.
func (p ListParams) TotalHeader(total int) int {
	if p.Paginated() {
		return total
	}
	return -1
}

// Page slices an in-memory result according to p.
func Page[T any](items []T, p ListParams) []T {
	if !p.Paginated() {
		return items
	}

	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}

	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}

// ContainsFold reports whether needle is a case-insensitive substring of
// any of the haystacks.
func ContainsFold(needle string, haystacks ...string) bool {
	if needle == "" {
		return true
	}

	needle = strings.ToLower(needle)
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}

	return false
}

func parseIntQuery(val string) int {
	if val == "" {
		return 0
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}

	return parsed
}
