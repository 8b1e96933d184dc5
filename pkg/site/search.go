package site

import (
	"net/url"
	"strings"

	"github.com/hazyhaar/showroom/pkg/catalog"
	"github.com/hazyhaar/showroom/pkg/content"
	"github.com/hazyhaar/showroom/pkg/search"
)

// Mode tells the presentation layer which search page to render.
type Mode string

const (
	// ModeProducts shows the listing a matched term points at.
	ModeProducts Mode = "products"
	// ModeCategory shows a category's projects and products.
	ModeCategory Mode = "category"
	// ModeEmpty shows the empty state with suggestions only.
	ModeEmpty Mode = "empty"
)

// SearchResult is the outcome of a site search. Related is filled in
// every mode.
type SearchResult struct {
	Query      string            `json:"query"`
	// Normalized is Query under the term table's normalization.
	Normalized string            `json:"normalized"`
	Mode       Mode              `json:"mode"`
	Term       *search.Term      `json:"term,omitempty"`
	Category   *search.Category  `json:"category,omitempty"`
	Products   []content.Product `json:"products,omitempty"`
	Projects   []content.Project `json:"projects,omitempty"`
	Related    []search.Term     `json:"related"`
}

// Search resolves query against the term table and, unless the matched term
// is restricted to products, the category table.
func (s *Site) Search(query string) *SearchResult {
	res := &SearchResult{Query: query, Normalized: s.terms.Normalize(query), Mode: ModeEmpty}

	term, termOK := s.terms.Resolve(query)
	if termOK {
		res.Term = term
	}
	if !termOK || !term.OnlyProducts {
		if cat, ok := s.categories.Resolve(query); ok {
			res.Category = cat
		}
	}

	switch {
	case res.Term != nil && res.Term.OnlyProducts:
		res.Mode = ModeProducts
		res.Category = nil
	case res.Category != nil:
		res.Mode = ModeCategory
	case res.Term != nil:
		res.Mode = ModeProducts
	}

	switch res.Mode {
	case ModeProducts:
		res.Products, res.Projects = s.expandHref(res.Term.Href)
	case ModeCategory:
		res.Products, res.Projects = s.expandCategory(res.Category)
	}

	res.Related = s.diversifier.Diversify(query, res.Term, res.Category, search.DefaultLimit)
	if res.Related == nil {
		res.Related = []search.Term{}
	}
	return res
}

// expandCategory resolves a category's references. Dangling slugs are dropped.
func (s *Site) expandCategory(c *search.Category) ([]content.Product, []content.Project) {
	var products []content.Product
	for _, ref := range c.Products {
		if p, ok := s.lookupProduct(ref.Brand, ref.Slug); ok {
			products = append(products, p)
		}
	}
	var projects []content.Project
	for _, slug := range c.Projects {
		if p, ok := s.lookupProject(slug); ok {
			projects = append(projects, p)
		}
	}
	return products, projects
}

// expandHref returns the first page of the listing a term points at:
// /products/{brand}?filters or /projects?filters. Other routes expand to
// nothing.
func (s *Site) expandHref(href string) ([]content.Product, []content.Project) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, nil
	}
	q := u.Query()
	path := strings.Trim(u.Path, "/")

	if path == "projects" {
		st := catalog.ParseState(q, ProjectFilterKeys())
		return nil, s.Projects(st).Items
	}
	brandID, ok := strings.CutPrefix(path, "products/")
	if !ok || strings.Contains(brandID, "/") {
		return nil, nil
	}
	res, err := s.Products(brandID, catalog.ParseState(q, ProductFilterKeys()))
	if err != nil {
		return nil, nil
	}
	return res.Items, nil
}

// Resolve exposes the raw resolver outcome, without expansion or related
// searches, for diagnostics.
func (s *Site) Resolve(query string) (*search.Term, *search.Category) {
	term, _ := s.terms.Resolve(query)
	cat, _ := s.categories.Resolve(query)
	return term, cat
}
