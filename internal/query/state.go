// Package query holds the list-query core shared by every dashboard screen:
// the query state and its store, the wire serializer, and the in-memory
// filterer used by screens whose endpoint returns the whole collection.
package query

import (
	"math"
	"slices"
	"time"
)

// All is the sentinel filter value meaning "no constraint on this field".
const All = "all"

// DefaultPageSize is used when a schema does not declare its own.
const DefaultPageSize = 25

// PageSizes lists the page sizes offered by list screens.
var PageSizes = []int{10, 25, 50, 100}

// DateLayout is the wire and CLI format of date range bounds.
const DateLayout = "2006-01-02"

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// IsValid checks whether the direction is a known value.
func (d Direction) IsValid() bool {
	return d == Asc || d == Desc
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Sort is a field identifier plus a direction.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// String returns the sort as "field:direction".
func (s Sort) String() string {
	return s.Field + ":" + string(s.Direction)
}

// DateRange is an inclusive range of calendar dates. A nil bound is unbounded.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// Inverted reports whether both bounds are set and start is after end.
// Such a range is accepted but matches nothing.
func (r DateRange) Inverted() bool {
	return r.Start != nil && r.End != nil && truncateDate(*r.Start).After(truncateDate(*r.End))
}

// Contains reports whether t falls on or between the range's calendar dates.
func (r DateRange) Contains(t time.Time) bool {
	if r.Inverted() {
		return false
	}
	d := truncateDate(t)
	if r.Start != nil && d.Before(truncateDate(*r.Start)) {
		return false
	}
	if r.End != nil && d.After(truncateDate(*r.End)) {
		return false
	}
	return true
}

func (r DateRange) clone() DateRange {
	var out DateRange
	if r.Start != nil {
		s := *r.Start
		out.Start = &s
	}
	if r.End != nil {
		e := *r.End
		out.End = &e
	}
	return out
}

// ParseDate parses a "2006-01-02" calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// truncateDate keeps t's calendar date in its own location.
func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FilterSpec declares a categorical filter and the query parameter it travels as.
type FilterSpec struct {
	Name  string
	Param string
}

// FlagSpec declares a boolean flag and the query parameter it travels as.
type FlagSpec struct {
	Name  string
	Param string
}

// Schema describes the query shape of one screen.
type Schema struct {
	Name            string
	Filters         []FilterSpec
	Flags           []FlagSpec
	SortFields      []string
	DefaultSort     Sort
	DefaultPageSize int
	HasDateRange    bool
}

// Default returns the all-default state for the screen.
func (s Schema) Default() State {
	st := State{
		Filters:  make(map[string]string, len(s.Filters)),
		Flags:    make(map[string]bool, len(s.Flags)),
		Sort:     s.DefaultSort,
		Page:     1,
		PageSize: s.pageSize(),
	}
	for _, f := range s.Filters {
		st.Filters[f.Name] = All
	}
	for _, f := range s.Flags {
		st.Flags[f.Name] = false
	}
	return st
}

// Validate checks the schema itself: the default sort must be declared and
// filter/flag names and params must be unique.
func (s Schema) Validate() error {
	if !s.SortsBy(s.DefaultSort.Field) {
		return &InvalidQueryKeyError{Screen: s.Name, Kind: "sort field", Key: s.DefaultSort.Field}
	}
	if !s.DefaultSort.Direction.IsValid() {
		return &InvalidQueryKeyError{Screen: s.Name, Kind: "sort direction", Key: string(s.DefaultSort.Direction)}
	}
	seen := map[string]bool{
		ParamPage: true, ParamLimit: true, ParamSortBy: true, ParamSortOrder: true,
		ParamSearch: true, ParamStartDate: true, ParamEndDate: true,
	}
	for _, f := range s.Filters {
		if f.Name == "" || seen[f.Param] {
			return &InvalidQueryKeyError{Screen: s.Name, Kind: "filter param", Key: f.Param}
		}
		seen[f.Param] = true
	}
	for _, f := range s.Flags {
		if f.Name == "" || seen[f.Param] {
			return &InvalidQueryKeyError{Screen: s.Name, Kind: "flag param", Key: f.Param}
		}
		seen[f.Param] = true
	}
	return nil
}

// SortsBy reports whether field is one of the screen's sortable fields.
func (s Schema) SortsBy(field string) bool {
	return slices.Contains(s.SortFields, field)
}

func (s Schema) hasFilter(name string) bool {
	return slices.ContainsFunc(s.Filters, func(f FilterSpec) bool { return f.Name == name })
}

func (s Schema) hasFlag(name string) bool {
	return slices.ContainsFunc(s.Flags, func(f FlagSpec) bool { return f.Name == name })
}

func (s Schema) pageSize() int {
	if s.DefaultPageSize > 0 {
		return s.DefaultPageSize
	}
	return DefaultPageSize
}

// State is the full set of user-controlled list parameters. States are
// replaced, never mutated: every operation in this package returns a copy.
type State struct {
	Search    string            `json:"search,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	DateRange DateRange         `json:"date_range"`
	Flags     map[string]bool   `json:"flags,omitempty"`
	Sort      Sort              `json:"sort"`
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
}

// Filter returns the selected value of a categorical filter, or All.
func (s State) Filter(name string) string {
	if v, ok := s.Filters[name]; ok && v != "" {
		return v
	}
	return All
}

// Flag returns the value of a boolean flag.
func (s State) Flag(name string) bool {
	return s.Flags[name]
}

// Offset is the zero-based index of the first record on the current page.
// It saturates at math.MaxInt for pages too large to address.
func (s State) Offset() int {
	if s.Page < 1 || s.PageSize <= 0 {
		return 0
	}
	if s.Page-1 > math.MaxInt/s.PageSize {
		return math.MaxInt
	}
	return (s.Page - 1) * s.PageSize
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Filters = make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = v
	}
	out.Flags = make(map[string]bool, len(s.Flags))
	for k, v := range s.Flags {
		out.Flags[k] = v
	}
	out.DateRange = s.DateRange.clone()
	return out
}
