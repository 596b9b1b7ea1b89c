package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Well-known query parameter names.
const (
	ParamPage      = "page"
	ParamLimit     = "limit"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
	ParamSearch    = "search"
	ParamStartDate = "startDate"
	ParamEndDate   = "endDate"
)

// Param is one query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. Order is significant: identical
// queries must encode identically so the string can serve as a cache key.
type Params []Param

// Get returns the first value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Encode returns the URL-encoded query string in list order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// Serialize converts st into request parameters. The order is fixed:
// page, limit, sortBy, sortOrder, search, filters (schema order),
// startDate, endDate, flags (schema order). Values at their defaults are
// omitted, except pagination and sort which are always sent.
func Serialize(schema Schema, st State) Params {
	params := Params{
		{ParamPage, strconv.Itoa(st.Page)},
		{ParamLimit, strconv.Itoa(st.PageSize)},
		{ParamSortBy, st.Sort.Field},
		{ParamSortOrder, string(st.Sort.Direction)},
	}
	return append(params, FilterParams(schema, st)...)
}

// FilterParams serializes only the search, filter, date and flag part of st,
// in the same order Serialize uses. Export endpoints take this subset.
func FilterParams(schema Schema, st State) Params {
	var params Params
	if term := strings.TrimSpace(st.Search); term != "" {
		params = append(params, Param{ParamSearch, term})
	}
	for _, f := range schema.Filters {
		if v := st.Filter(f.Name); v != All {
			params = append(params, Param{f.Param, v})
		}
	}
	if st.DateRange.Start != nil {
		params = append(params, Param{ParamStartDate, st.DateRange.Start.Format(DateLayout)})
	}
	if st.DateRange.End != nil {
		params = append(params, Param{ParamEndDate, st.DateRange.End.Format(DateLayout)})
	}
	for _, f := range schema.Flags {
		if st.Flag(f.Name) {
			params = append(params, Param{f.Param, "true"})
		}
	}
	return params
}

// Deserialize is the inverse of Serialize. Unknown keys are ignored and
// missing or malformed values take the schema defaults.
func Deserialize(schema Schema, params Params) State {
	st := schema.Default()

	if v, ok := params.Get(ParamPage); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			st.Page = n
		}
	}
	if v, ok := params.Get(ParamLimit); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			st.PageSize = n
		}
	}
	if v, ok := params.Get(ParamSortBy); ok && schema.SortsBy(v) {
		st.Sort.Field = v
	}
	if v, ok := params.Get(ParamSortOrder); ok && Direction(v).IsValid() {
		st.Sort.Direction = Direction(v)
	}
	if v, ok := params.Get(ParamSearch); ok {
		st.Search = strings.TrimSpace(v)
	}
	for _, f := range schema.Filters {
		if v, ok := params.Get(f.Param); ok && v != "" {
			st.Filters[f.Name] = v
		}
	}
	if schema.HasDateRange {
		if v, ok := params.Get(ParamStartDate); ok {
			if d, err := ParseDate(v); err == nil {
				st.DateRange.Start = &d
			}
		}
		if v, ok := params.Get(ParamEndDate); ok {
			if d, err := ParseDate(v); err == nil {
				st.DateRange.End = &d
			}
		}
	}
	for _, f := range schema.Flags {
		if v, ok := params.Get(f.Param); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				st.Flags[f.Name] = b
			}
		}
	}
	return st
}

// ParseQuery decodes a raw query string, keeping parameter order, and
// deserializes it against schema.
func ParseQuery(schema Schema, raw string) (State, error) {
	var params Params
	for _, part := range strings.Split(strings.TrimPrefix(raw, "?"), "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return State{}, fmt.Errorf("decoding query key %q: %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return State{}, fmt.Errorf("decoding query value for %q: %w", key, err)
		}
		params = append(params, Param{key, value})
	}
	return Deserialize(schema, params), nil
}
