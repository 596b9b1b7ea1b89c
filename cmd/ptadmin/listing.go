package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
)

// addQueryFlags registers the list query flags a screen supports.
func addQueryFlags(cmd *cobra.Command, schema query.Schema) {
	f := cmd.Flags()
	f.StringP("search", "s", "", "free-text search")
	if len(schema.Filters) > 0 {
		names := make([]string, len(schema.Filters))
		for i, fs := range schema.Filters {
			names[i] = fs.Name
		}
		f.StringArrayP("filter", "f", nil, "categorical filter name=value, repeatable ("+strings.Join(names, ", ")+")")
	}
	if len(schema.Flags) > 0 {
		names := make([]string, len(schema.Flags))
		for i, fs := range schema.Flags {
			names[i] = fs.Name
		}
		f.StringSlice("only", nil, "enable a boolean filter ("+strings.Join(names, ", ")+")")
	}
	if schema.HasDateRange {
		f.String("from", "", "first date to include (YYYY-MM-DD)")
		f.String("to", "", "last date to include (YYYY-MM-DD)")
	}
	f.String("sort", "", "sort field[:asc|desc] ("+strings.Join(schema.SortFields, ", ")+")")
	f.Int("page", 1, "page number")
	sizes := make([]string, len(query.PageSizes))
	for i, n := range query.PageSizes {
		sizes[i] = strconv.Itoa(n)
	}
	f.Int("limit", schema.Default().PageSize, "rows per page ("+strings.Join(sizes, ", ")+")")
	f.String("query", "", "start from a serialized query string, e.g. \"page=2&limit=50\"")
}

// splitField splits "key=value"; the key must be non-empty.
func splitField(s string) (string, string, bool) {
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// parseSort reads "field" or "field:dir". A bare field sorts descending,
// matching what selecting a new column does.
func parseSort(s string) (query.Sort, error) {
	field, dir, found := strings.Cut(s, ":")
	out := query.Sort{Field: field, Direction: query.Desc}
	if found {
		out.Direction = query.Direction(strings.ToLower(dir))
	}
	if field == "" {
		return query.Sort{}, fmt.Errorf("invalid sort %q: missing field", s)
	}
	return out, nil
}

// parseDateFlag parses a date bound. An empty value clears the bound.
func parseDateFlag(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := query.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q (expected YYYY-MM-DD)", name, s)
	}
	return &t, nil
}

// listState builds the query state for a list command from its flags. Flags
// that were not given leave the screen default (or the --query value) alone.
func listState(cmd *cobra.Command, schema query.Schema) (query.State, error) {
	store := query.NewStore(schema)
	f := cmd.Flags()

	if raw, _ := f.GetString("query"); raw != "" {
		parsed, err := query.ParseQuery(schema, raw)
		if err != nil {
			return store.State(), fmt.Errorf("parsing --query: %w", err)
		}
		store.Restore(parsed)
	}
	st := store.State()

	var p query.Patch
	if f.Changed("search") {
		s, _ := f.GetString("search")
		p.Search = &s
	}
	if f.Changed("filter") {
		pairs, _ := f.GetStringArray("filter")
		p.Filters = make(map[string]string, len(pairs))
		for _, pair := range pairs {
			k, v, ok := splitField(pair)
			if !ok {
				return st, fmt.Errorf("invalid filter %q (expected name=value)", pair)
			}
			p.Filters[k] = v
		}
	}
	if f.Changed("only") {
		names, _ := f.GetStringSlice("only")
		p.Flags = make(map[string]bool, len(names))
		for _, n := range names {
			p.Flags[n] = true
		}
	}
	if f.Changed("from") || f.Changed("to") {
		r := st.DateRange
		if f.Changed("from") {
			s, _ := f.GetString("from")
			t, err := parseDateFlag("from", s)
			if err != nil {
				return st, err
			}
			r.Start = t
		}
		if f.Changed("to") {
			s, _ := f.GetString("to")
			t, err := parseDateFlag("to", s)
			if err != nil {
				return st, err
			}
			r.End = t
		}
		p.DateRange = &r
	}
	if f.Changed("sort") {
		s, _ := f.GetString("sort")
		sort, err := parseSort(s)
		if err != nil {
			return st, err
		}
		p.Sort = &sort
	}
	if f.Changed("limit") {
		n, _ := f.GetInt("limit")
		p.PageSize = &n
	}
	if f.Changed("page") {
		n, _ := f.GetInt("page")
		p.Page = &n
	}

	return store.Patch(p)
}
