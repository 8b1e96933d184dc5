package catalog

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Query parameter names used by the URL codec. Filters use their facet key.
const (
	ParamQuery = "q"
	ParamSort  = "sort"
	ParamPage  = "page"
)

// State is the listing state a page reconstructs from its URL.
// Page is zero-indexed; the URL carries it one-indexed.
type State struct {
	Query   string              `json:"q,omitempty"`
	Filters map[string][]string `json:"filters,omitempty"`
	Sort    string              `json:"sort,omitempty"`
	Page    int                 `json:"page"`
}

// WithQuery returns a copy of st with a new search text and the page reset.
func (st State) WithQuery(q string) State {
	out := st.clone()
	out.Query = q
	out.Page = 0
	return out
}

// WithSort returns a copy of st with a new sort key and the page reset.
func (st State) WithSort(key string) State {
	out := st.clone()
	out.Sort = key
	out.Page = 0
	return out
}

// WithFilter returns a copy of st where key selects exactly values, with the
// page reset. No values clears the filter.
func (st State) WithFilter(key string, values ...string) State {
	out := st.clone()
	out.Page = 0
	values = compact(values)
	if len(values) == 0 {
		delete(out.Filters, key)
	} else {
		if out.Filters == nil {
			out.Filters = make(map[string][]string)
		}
		out.Filters[key] = values
	}
	if len(out.Filters) == 0 {
		out.Filters = nil
	}
	return out
}

// Toggle adds value to key's selection, or removes it if present, with the
// page reset.
func (st State) Toggle(key, value string) State {
	current := st.Filters[key]
	if i := slices.Index(current, value); i >= 0 {
		return st.WithFilter(key, slices.Delete(slices.Clone(current), i, i+1)...)
	}
	return st.WithFilter(key, append(slices.Clone(current), value)...)
}

// WithPage returns a copy of st on the given zero-indexed page.
func (st State) WithPage(page int) State {
	out := st.clone()
	out.Page = max(page, 0)
	return out
}

// Canonical drops empty filter values and keys and clamps the page, which is
// the form Encode/ParseState round-trips exactly.
func (st State) Canonical() State {
	out := State{Query: st.Query, Sort: st.Sort, Page: max(st.Page, 0)}
	for k, vals := range st.Filters {
		if vals = compact(vals); len(vals) > 0 {
			if out.Filters == nil {
				out.Filters = make(map[string][]string)
			}
			out.Filters[k] = vals
		}
	}
	return out
}

func (st State) clone() State {
	out := st
	if st.Filters != nil {
		out.Filters = make(map[string][]string, len(st.Filters))
		for k, v := range st.Filters {
			out.Filters[k] = slices.Clone(v)
		}
	}
	return out
}

// Encode serializes st into query parameters: q, sort, page (one-indexed,
// only past the first page) and one repeated parameter per filter key.
func (st State) Encode() url.Values {
	v := url.Values{}
	if st.Query != "" {
		v.Set(ParamQuery, st.Query)
	}
	if st.Sort != "" {
		v.Set(ParamSort, st.Sort)
	}
	if st.Page > 0 {
		v.Set(ParamPage, strconv.Itoa(st.Page+1))
	}
	for _, k := range slices.Sorted(maps.Keys(st.Filters)) {
		for _, val := range st.Filters[k] {
			if val != "" {
				v.Add(k, val)
			}
		}
	}
	return v
}

// ParseState rebuilds a state from query parameters. Only the listed filter
// keys are read; a missing or invalid page means the first page.
func ParseState(v url.Values, filterKeys []string) State {
	st := State{
		Query: v.Get(ParamQuery),
		Sort:  v.Get(ParamSort),
	}
	if p, err := strconv.Atoi(strings.TrimSpace(v.Get(ParamPage))); err == nil && p > 1 {
		st.Page = p - 1
	}
	for _, k := range filterKeys {
		if k == ParamQuery || k == ParamSort || k == ParamPage {
			continue
		}
		if vals := compact(v[k]); len(vals) > 0 {
			if st.Filters == nil {
				st.Filters = make(map[string][]string)
			}
			st.Filters[k] = vals
		}
	}
	return st
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
