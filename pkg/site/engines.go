package site

import (
	"github.com/hazyhaar/showroom/pkg/catalog"
	"github.com/hazyhaar/showroom/pkg/content"
)

// Product filter keys. They double as URL query parameters.
const (
	FacetCategory = "category"
	FacetSeries   = "series"
	FacetFinish   = "finish"
	FacetPower    = "power"
	FacetIP       = "ip"

	FacetSection = "section"
)

func one(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func productName(p content.Product) string   { return p.Name }
func productSeries(p content.Product) string { return p.Series }

func newProductEngine(pageSize int) *catalog.Engine[content.Product] {
	return catalog.New(
		func(p content.Product) []string { return []string{p.Name, p.Description} },
		catalog.WithFacet(FacetCategory, catalog.Single, func(p content.Product) []string { return one(p.Category) }),
		catalog.WithFacet(FacetSeries, catalog.Single, func(p content.Product) []string { return one(p.Series) }),
		catalog.WithFacet(FacetFinish, catalog.Multi, func(p content.Product) []string {
			names := make([]string, len(p.Finishes))
			for i, f := range p.Finishes {
				names[i] = f.Name
			}
			return names
		}),
		catalog.WithFacet(FacetPower, catalog.Single, func(p content.Product) []string { return one(p.Power) }),
		catalog.WithFacet(FacetIP, catalog.Single, func(p content.Product) []string { return one(p.IPRating) }),
		catalog.WithSort("name", catalog.ByName(productName)),
		catalog.WithSort("alphabetical", catalog.ByName(productName)),
		catalog.WithSort("series", catalog.BySeriesThenName(productSeries, productName)),
		catalog.WithPageSize[content.Product](pageSize),
	)
}

func projectTitle(p content.Project) string { return p.Title }

func newProjectEngine(pageSize int) *catalog.Engine[content.Project] {
	return catalog.New(
		func(p content.Project) []string { return []string{p.Title, p.Context, p.Location} },
		catalog.WithFacet(FacetSection, catalog.Single, func(p content.Project) []string { return one(p.Section) }),
		catalog.WithSort("name", catalog.ByName(projectTitle)),
		catalog.WithSort("alphabetical", catalog.ByName(projectTitle)),
		catalog.WithPageSize[content.Project](pageSize),
	)
}
