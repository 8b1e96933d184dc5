// Package catalog implements the listing pipeline shared by the product and
// project pages: facet filters, free-text search, named sorts and pagination.
//
// The pipeline is pure. It never mutates its input and is cheap enough to be
// recomputed on every filter toggle.
package catalog

import (
	"slices"
	"strings"

	"github.com/hazyhaar/showroom/pkg/content"
)

// DefaultPageSize is the number of items on one listing page.
const DefaultPageSize = 6

// FacetKind selects how a facet's selected values combine.
type FacetKind int

const (
	// Single facets hold one value per item (category, series). An item
	// matches when its value is one of the selected values.
	Single FacetKind = iota
	// Multi facets hold several values per item (finishes). An item matches
	// only when it carries every selected value.
	Multi
)

// Facet is a filterable attribute of T. Values returns display values; they
// are compared by slug key so "Paintable White" matches "paintable-white".
type Facet[T any] struct {
	Key    string
	Kind   FacetKind
	Values func(T) []string
}

// Result is one page of a listing.
type Result[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"` // zero-indexed
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
}

// FacetOption is a selectable facet value with the number of items that
// would match if it were selected alone.
type FacetOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Engine runs the listing pipeline for items of type T.
type Engine[T any] struct {
	facets   []Facet[T]
	sorts    map[string]Comparator[T]
	text     func(T) []string
	pageSize int
}

// Option configures an Engine.
type Option[T any] func(*Engine[T])

// WithFacet registers a facet under key.
func WithFacet[T any](key string, kind FacetKind, values func(T) []string) Option[T] {
	return func(e *Engine[T]) {
		e.facets = append(e.facets, Facet[T]{Key: key, Kind: kind, Values: values})
	}
}

// WithSort registers a named comparator. Registering an identity key again
// replaces it.
func WithSort[T any](key string, cmp Comparator[T]) Option[T] {
	return func(e *Engine[T]) {
		e.sorts[key] = cmp
	}
}

// WithPageSize overrides DefaultPageSize. Non-positive sizes are ignored.
func WithPageSize[T any](n int) Option[T] {
	return func(e *Engine[T]) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// New builds an engine. text returns the fields free-text search looks at.
// The identity sorts (recommended, featured, curated) are always registered.
func New[T any](text func(T) []string, opts ...Option[T]) *Engine[T] {
	e := &Engine[T]{
		sorts:    make(map[string]Comparator[T]),
		text:     text,
		pageSize: DefaultPageSize,
	}
	for _, key := range IdentitySorts {
		e.sorts[key] = nil
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PageSize returns the configured page size.
func (e *Engine[T]) PageSize() int { return e.pageSize }

// FacetKeys returns the registered facet keys in registration order. These
// are also the query parameters ParseState reads filters from.
func (e *Engine[T]) FacetKeys() []string {
	keys := make([]string, len(e.facets))
	for i, f := range e.facets {
		keys[i] = f.Key
	}
	return keys
}

// HasFacet reports whether key is a registered facet.
func (e *Engine[T]) HasFacet(key string) bool {
	return e.facet(key) != nil
}

// SortKeys returns the registered sort keys, sorted.
func (e *Engine[T]) SortKeys() []string {
	keys := make([]string, 0, len(e.sorts))
	for k := range e.sorts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Query filters, sorts and paginates items according to st.
func (e *Engine[T]) Query(items []T, st State) Result[T] {
	matched := e.Filter(items, st)
	e.Sort(matched, st.Sort)
	return Paginate(matched, st.Page, e.pageSize)
}

// Filter returns the items matching every active facet and the free-text
// query, in input order. items is not modified.
func (e *Engine[T]) Filter(items []T, st State) []T {
	m := e.matcher(st, "")
	out := make([]T, 0, len(items))
	for _, it := range items {
		if m.match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Options lists the values of facet key across items that match every other
// active constraint of st, in order of first appearance.
func (e *Engine[T]) Options(items []T, st State, key string) []FacetOption {
	f := e.facet(key)
	if f == nil {
		return nil
	}
	m := e.matcher(st, key)

	index := make(map[string]int)
	var opts []FacetOption
	for _, it := range items {
		if !m.match(it) {
			continue
		}
		seen := make(map[string]bool)
		for _, label := range f.Values(it) {
			k := content.Slugify(label)
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			if i, ok := index[k]; ok {
				opts[i].Count++
				continue
			}
			index[k] = len(opts)
			opts = append(opts, FacetOption{Value: k, Label: strings.TrimSpace(label), Count: 1})
		}
	}
	return opts
}

func (e *Engine[T]) facet(key string) *Facet[T] {
	for i := range e.facets {
		if e.facets[i].Key == key {
			return &e.facets[i]
		}
	}
	return nil
}

type activeFacet[T any] struct {
	facet    *Facet[T]
	selected []string
}

type matcher[T any] struct {
	facets []activeFacet[T]
	query  string
	text   func(T) []string
}

// matcher compiles st once per query. skip leaves one facet out, for option counts.
func (e *Engine[T]) matcher(st State, skip string) matcher[T] {
	m := matcher[T]{
		query: strings.ToLower(strings.TrimSpace(st.Query)),
		text:  e.text,
	}
	for i := range e.facets {
		f := &e.facets[i]
		if f.Key == skip {
			continue
		}
		var selected []string
		for _, v := range st.Filters[f.Key] {
			if k := content.Slugify(v); k != "" && !slices.Contains(selected, k) {
				selected = append(selected, k)
			}
		}
		if len(selected) > 0 {
			m.facets = append(m.facets, activeFacet[T]{facet: f, selected: selected})
		}
	}
	return m
}

func (m matcher[T]) match(it T) bool {
	for _, af := range m.facets {
		if !af.match(it) {
			return false
		}
	}
	if m.query == "" || m.text == nil {
		return true
	}
	for _, field := range m.text(it) {
		if strings.Contains(strings.ToLower(field), m.query) {
			return true
		}
	}
	return false
}

func (af activeFacet[T]) match(it T) bool {
	values := af.facet.Values(it)
	keys := make([]string, 0, len(values))
	for _, v := range values {
		keys = append(keys, content.Slugify(v))
	}

	switch af.facet.Kind {
	case Multi:
		for _, s := range af.selected {
			if !slices.Contains(keys, s) {
				return false
			}
		}
		return true
	default:
		for _, s := range af.selected {
			if slices.Contains(keys, s) {
				return true
			}
		}
		return false
	}
}

// Paginate returns the zero-indexed page of items. TotalPages is at least 1
// and page is clamped into range.
func Paginate[T any](items []T, page, pageSize int) Result[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	if page < 0 {
		page = 0
	}
	if page > pages-1 {
		page = pages - 1
	}

	start := page * pageSize
	end := min(start+pageSize, total)
	if start > total {
		start = total
	}
	return Result[T]{
		Items:      items[start:end:end],
		Page:       page,
		TotalPages: pages,
		TotalCount: total,
	}
}
