package site

import (
	"fmt"

	"github.com/hazyhaar/showroom/pkg/catalog"
	"github.com/hazyhaar/showroom/pkg/content"
)

// BrandInfo is the public summary of a brand.
type BrandInfo struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Products int    `json:"products"`
}

// Brands lists the brands in manifest order.
func (s *Site) Brands() []BrandInfo {
	out := make([]BrandInfo, len(s.brands))
	for i, b := range s.brands {
		out[i] = BrandInfo{ID: b.ID, Label: b.Label, Products: len(b.products)}
	}
	return out
}

func (s *Site) brand(id string) (*Brand, error) {
	b, ok := s.byBrand[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBrand, id)
	}
	return b, nil
}

// ProductFilterKeys are the facet keys of every product listing, which are
// also the query parameters a listing URL may carry.
func ProductFilterKeys() []string {
	return []string{FacetCategory, FacetSeries, FacetFinish, FacetPower, FacetIP}
}

// ProjectFilterKeys are the facet keys of the project listing.
func ProjectFilterKeys() []string {
	return []string{FacetSection}
}

// Products runs a brand's listing query.
func (s *Site) Products(brandID string, st catalog.State) (catalog.Result[content.Product], error) {
	b, err := s.brand(brandID)
	if err != nil {
		return catalog.Result[content.Product]{}, err
	}
	return b.engine.Query(b.products, st), nil
}

// ProductOptions lists the values of facet key for a brand, counted over the
// products matching the other constraints of st.
func (s *Site) ProductOptions(brandID, key string, st catalog.State) ([]catalog.FacetOption, error) {
	b, err := s.brand(brandID)
	if err != nil {
		return nil, err
	}
	if !b.engine.HasFacet(key) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFacet, key)
	}
	return b.engine.Options(b.products, st, key), nil
}

// ProductSorts returns the sort keys product listings accept.
func (s *Site) ProductSorts() []string {
	return newProductEngine(0).SortKeys()
}

// Product returns one product of a brand.
func (s *Site) Product(brandID, slug string) (content.Product, error) {
	b, err := s.brand(brandID)
	if err != nil {
		return content.Product{}, err
	}
	i, ok := b.bySlug[slug]
	if !ok {
		return content.Product{}, fmt.Errorf("product %s/%s: %w", brandID, slug, ErrNotFound)
	}
	return b.products[i], nil
}

// Projects runs the portfolio listing query.
func (s *Site) Projects(st catalog.State) catalog.Result[content.Project] {
	return s.projectEngine.Query(s.projects, st)
}

// ProjectSections lists the portfolio sections with their project counts,
// counted over the projects matching the other constraints of st.
func (s *Site) ProjectSections(st catalog.State) []catalog.FacetOption {
	opts := s.projectEngine.Options(s.projects, st, FacetSection)
	// Show the vertical's own label rather than its slug.
	labels := make(map[string]string)
	for _, p := range s.projects {
		if _, ok := labels[p.Section]; !ok && p.Vertical != "" {
			labels[p.Section] = p.Vertical
		}
	}
	for i := range opts {
		if l, ok := labels[opts[i].Value]; ok {
			opts[i].Label = l
		}
	}
	return opts
}

// ProjectDetail is a project with its gallery.
type ProjectDetail struct {
	content.Project
	Media []string `json:"media,omitempty"`
}

// Project returns one project and its media.
func (s *Site) Project(slug string) (ProjectDetail, error) {
	i, ok := s.projectBySlug[slug]
	if !ok {
		return ProjectDetail{}, fmt.Errorf("project %s: %w", slug, ErrNotFound)
	}
	return ProjectDetail{Project: s.projects[i], Media: s.media.Lookup(slug)}, nil
}

func (s *Site) lookupProject(slug string) (content.Project, bool) {
	i, ok := s.projectBySlug[slug]
	if !ok {
		return content.Project{}, false
	}
	return s.projects[i], true
}

func (s *Site) lookupProduct(brandID, slug string) (content.Product, bool) {
	b, ok := s.byBrand[brandID]
	if !ok {
		return content.Product{}, false
	}
	i, ok := b.bySlug[slug]
	if !ok {
		return content.Product{}, false
	}
	return b.products[i], true
}
