package query

import "fmt"

// Patch holds optional changes to a State. Nil fields mean "don't change".
// Filters and Flags are merged key by key.
type Patch struct {
	Search    *string
	Filters   map[string]string
	Flags     map[string]bool
	DateRange *DateRange
	Sort      *Sort
	Page      *int
	PageSize  *int
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}

func (p Patch) touchesQuery() bool {
	return p.Search != nil || len(p.Filters) > 0 || len(p.Flags) > 0 ||
		p.DateRange != nil || p.Sort != nil || p.PageSize != nil
}

// ApplyPatch merges p into st and returns the new state. Any change other
// than Page moves back to page 1, unless p also sets Page explicitly.
// The input state is never modified; on error it is returned unchanged.
func ApplyPatch(schema Schema, st State, p Patch) (State, error) {
	if err := checkPatch(schema, p); err != nil {
		return st, err
	}

	next := st.Clone()
	if p.Search != nil {
		next.Search = *p.Search
	}
	for name, v := range p.Filters {
		if v == "" {
			v = All
		}
		next.Filters[name] = v
	}
	for name, v := range p.Flags {
		next.Flags[name] = v
	}
	if p.DateRange != nil {
		next.DateRange = p.DateRange.clone()
	}
	if p.Sort != nil {
		next.Sort = *p.Sort
	}
	if p.PageSize != nil {
		next.PageSize = *p.PageSize
	}

	switch {
	case p.Page != nil:
		next.Page = *p.Page
	case p.touchesQuery():
		next.Page = 1
	}
	return next, nil
}

func checkPatch(schema Schema, p Patch) error {
	for name := range p.Filters {
		if !schema.hasFilter(name) {
			return &InvalidQueryKeyError{Screen: schema.Name, Kind: "filter", Key: name}
		}
	}
	for name := range p.Flags {
		if !schema.hasFlag(name) {
			return &InvalidQueryKeyError{Screen: schema.Name, Kind: "flag", Key: name}
		}
	}
	if p.DateRange != nil && !schema.HasDateRange {
		return &InvalidQueryKeyError{Screen: schema.Name, Kind: "filter", Key: "dateRange"}
	}
	if p.Sort != nil {
		if !schema.SortsBy(p.Sort.Field) {
			return &InvalidQueryKeyError{Screen: schema.Name, Kind: "sort field", Key: p.Sort.Field}
		}
		if !p.Sort.Direction.IsValid() {
			return &InvalidQueryKeyError{Screen: schema.Name, Kind: "sort direction", Key: string(p.Sort.Direction)}
		}
	}
	if p.Page != nil && *p.Page < 1 {
		return fmt.Errorf("%w: page %d", ErrInvalidPagination, *p.Page)
	}
	if p.PageSize != nil && *p.PageSize <= 0 {
		return fmt.Errorf("%w: page size %d", ErrInvalidPagination, *p.PageSize)
	}
	return nil
}

// Store owns the query state of one screen. It is not safe for concurrent
// mutation; the screen that owns it is its only writer.
type Store struct {
	schema Schema
	state  State
}

// NewStore creates a store holding the schema's default state.
func NewStore(schema Schema) *Store {
	return &Store{schema: schema, state: schema.Default()}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	return s.state.Clone()
}

// Patch applies p and replaces the current state.
func (s *Store) Patch(p Patch) (State, error) {
	next, err := ApplyPatch(s.schema, s.state, p)
	if err != nil {
		return s.State(), err
	}
	s.state = next
	return s.State(), nil
}

// Restore replaces the current state, e.g. with one decoded from a saved
// query string. The page is kept as given.
func (s *Store) Restore(st State) State {
	s.state = st.Clone()
	return s.State()
}

// Reset returns the store to the schema defaults.
func (s *Store) Reset() State {
	s.state = s.schema.Default()
	return s.State()
}

// ToggleSort flips the direction when field is already the sort field,
// otherwise sorts by field descending.
func (s *Store) ToggleSort(field string) (State, error) {
	next := Sort{Field: field, Direction: Desc}
	if s.state.Sort.Field == field {
		next.Direction = s.state.Sort.Direction.Flip()
	}
	return s.Patch(Patch{Sort: &next})
}
