package api

import (
	"context"
	"strings"

	"github.com/hazyhaar/showroom/pkg/catalog"
	"github.com/hazyhaar/showroom/pkg/content"
	"github.com/hazyhaar/showroom/pkg/kit"
	"github.com/hazyhaar/showroom/pkg/site"
)

// Shared request/response types used by both HTTP and MCP transports.

type searchReq struct {
	Query string
}

type listProductsReq struct {
	Brand string
	State catalog.State
}

type productReq struct {
	Brand string
	Slug  string
}

type facetReq struct {
	Brand string
	Key   string
	State catalog.State
}

type listProjectsReq struct {
	State catalog.State
}

type projectReq struct {
	Slug string
}

type brandsResponse struct {
	Brands []site.BrandInfo `json:"brands"`
}

type productsResponse struct {
	Brand string `json:"brand"`
	catalog.Result[content.Product]
	Sorts  []string      `json:"sorts"`
	Facets []string      `json:"facets"`
	State  catalog.State `json:"state"`
}

type facetResponse struct {
	Brand   string                `json:"brand"`
	Key     string                `json:"key"`
	Options []catalog.FacetOption `json:"options"`
}

type projectsResponse struct {
	catalog.Result[content.Project]
	Sections []catalog.FacetOption `json:"sections"`
	State    catalog.State         `json:"state"`
}

// endpoints groups the kit.Endpoints backed by the registry. Every call takes
// the current site once so a reload never changes data mid-request.
type endpoints struct {
	search       kit.Endpoint
	listBrands   kit.Endpoint
	listProducts kit.Endpoint
	product      kit.Endpoint
	facet        kit.Endpoint
	listProjects kit.Endpoint
	project      kit.Endpoint
}

func newEndpoints(reg *site.Registry, o *options) *endpoints {
	wrap := func(name string, ep kit.Endpoint, extra ...kit.Middleware) kit.Endpoint {
		return kit.Chain(kit.RequestLogging(o.logger, name), extra...)(ep)
	}
	var searchMW []kit.Middleware
	if o.searchLog != nil {
		searchMW = append(searchMW, o.searchLog)
	}
	return &endpoints{
		search:       wrap("search", searchEndpoint(reg), searchMW...),
		listBrands:   wrap("list_brands", listBrandsEndpoint(reg)),
		listProducts: wrap("list_products", listProductsEndpoint(reg)),
		product:      wrap("product", productEndpoint(reg)),
		facet:        wrap("facet", facetEndpoint(reg)),
		listProjects: wrap("list_projects", listProjectsEndpoint(reg)),
		project:      wrap("project", projectEndpoint(reg)),
	}
}

func searchEndpoint(reg *site.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*searchReq)
		s, err := reg.Site()
		if err != nil {
			return nil, err
		}
		return s.Search(strings.TrimSpace(req.Query)), nil
	}
}

func listBrandsEndpoint(reg *site.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		s, err := reg.Site()
		if err != nil {
			return nil, err
		}
		return brandsResponse{Brands: s.Brands()}, nil
	}
}

func listProductsEndpoint(reg *site.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*listProductsReq)
		s, err := reg.Site()
		if err != nil {
			return nil, err
		}
		res, err := s.Products(req.Brand, req.State)
		if err != nil {
			return nil, err
		}
		return productsResponse{
			Brand:  req.Brand,
			Result: res,
			Sorts:  s.ProductSorts(),
			Facets: site.ProductFilterKeys(),
			State:  req.State.WithPage(res.Page),
		}, nil
	}
}

func productEndpoint(reg *site.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*productReq)
		s, err := reg.Site()
		if err != nil {
			return nil, err
		}
		return s.Product(req.Brand, req.Slug)
	}
}

func facetEndpoint(reg *site.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*facetReq)
		s, err := reg.Site()
		if err != nil {
			return nil, err
		}
		opts, err := s.ProductOptions(req.Brand, req.Key, req.State)
		if err != nil {
			return nil, err
		}
		if opts == nil {
			opts = []catalog.FacetOption{}
		}
		return facetResponse{Brand: req.Brand, Key: req.Key, Options: opts}, nil
	}
}

func listProjectsEndpoint(reg *site.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*listProjectsReq)
		s, err := reg.Site()
		if err != nil {
			return nil, err
		}
		res := s.Projects(req.State)
		return projectsResponse{
			Result:   res,
			Sections: s.ProjectSections(req.State),
			State:    req.State.WithPage(res.Page),
		}, nil
	}
}

func projectEndpoint(reg *site.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*projectReq)
		s, err := reg.Site()
		if err != nil {
			return nil, err
		}
		return s.Project(req.Slug)
	}
}
