package query

import (
	"slices"
	"strings"
	"time"
)

// Filterer derives the visible list from a whole in-memory collection,
// for endpoints that do not filter or paginate server-side. Each accessor
// map is keyed by the schema's filter, flag or sort field name.
type Filterer[T any] struct {
	// Text fields searched by the free-text term (logical OR).
	Text []func(T) string
	// Categorical returns the record's value for a filter.
	Categorical map[string]func(T) string
	// Flags returns whether the record satisfies a flag when it is on.
	Flags map[string]func(T) bool
	// Date returns the timestamp the date range applies to.
	Date func(T) time.Time
	// Sort compares two records by a sort field, ascending.
	Sort map[string]func(a, b T) int
}

// Apply returns the records of items matching st, ordered by st.Sort.
// The sort is stable so ties keep collection order. items is not modified.
func (f Filterer[T]) Apply(items []T, st State) []T {
	if st.DateRange.Inverted() {
		return []T{}
	}

	term := strings.ToLower(strings.TrimSpace(st.Search))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f.matches(item, st, term) {
			out = append(out, item)
		}
	}

	if cmp, ok := f.Sort[st.Sort.Field]; ok {
		if st.Sort.Direction == Desc {
			slices.SortStableFunc(out, func(a, b T) int { return cmp(b, a) })
		} else {
			slices.SortStableFunc(out, cmp)
		}
	}
	return out
}

func (f Filterer[T]) matches(item T, st State, term string) bool {
	if term != "" && !f.matchesText(item, term) {
		return false
	}
	for name, want := range st.Filters {
		if want == All || want == "" {
			continue
		}
		get, ok := f.Categorical[name]
		if !ok || get(item) != want {
			return false
		}
	}
	for name, on := range st.Flags {
		if !on {
			continue
		}
		pred, ok := f.Flags[name]
		if !ok || !pred(item) {
			return false
		}
	}
	if !st.DateRange.IsZero() {
		if f.Date == nil || !st.DateRange.Contains(f.Date(item)) {
			return false
		}
	}
	return true
}

func (f Filterer[T]) matchesText(item T, term string) bool {
	for _, field := range f.Text {
		if strings.Contains(strings.ToLower(field(item)), term) {
			return true
		}
	}
	return false
}

// Page returns the current page of an already filtered list.
func (f Filterer[T]) Page(filtered []T, st State) []T {
	return Paginate(filtered, st)
}

// Paginate returns the st.PageSize window starting at st.Offset(). A page
// past the end yields an empty slice.
func Paginate[T any](items []T, st State) []T {
	if st.PageSize <= 0 || st.Page < 1 {
		return []T{}
	}
	if st.Page-1 >= TotalPages(len(items), st.PageSize) {
		return []T{}
	}
	start := st.Offset()
	end := min(start+st.PageSize, len(items))
	return slices.Clone(items[start:end])
}

// TotalPages returns the number of pages needed for total records.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

// Gap marks elided page numbers in VisiblePages.
const Gap = -1

// VisiblePages returns the page links shown for a pager: the first and last
// page, two pages either side of current, and Gap where pages are elided.
// It returns nil when there is at most one page.
func VisiblePages(current, total int) []int {
	const delta = 2
	if total <= 1 {
		return nil
	}

	pages := []int{1}
	if current-delta > 2 {
		pages = append(pages, Gap)
	}
	for i := max(2, current-delta); i <= min(total-1, current+delta); i++ {
		pages = append(pages, i)
	}
	if current+delta < total-1 {
		pages = append(pages, Gap)
	}
	return append(pages, total)
}
