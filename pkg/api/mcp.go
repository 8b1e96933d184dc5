package api

import (
	"log/slog"
	"net/url"

	"github.com/hazyhaar/showroom/pkg/catalog"
	"github.com/hazyhaar/showroom/pkg/kit"
	"github.com/hazyhaar/showroom/pkg/site"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the showroom MCP tools on the server. They
// dispatch to the same endpoints as the HTTP routes.
func RegisterMCPTools(srv *server.MCPServer, reg *site.Registry, opts ...Option) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	eps := newEndpoints(reg, o)

	registerSearch(srv, eps)
	registerListBrands(srv, eps)
	registerListProducts(srv, eps)
	registerListProjects(srv, eps)
}

func registerSearch(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("search_site",
		mcp.WithDescription("Resolve a site search query to a curated term or category, with matching products, projects and related searches."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The search query, e.g. \"wall speakers\"")),
	)

	kit.RegisterMCPTool(srv, tool, eps.search, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &searchReq{Query: query}}, nil
	})
}

func registerListBrands(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("list_brands",
		mcp.WithDescription("List the brands in the catalog with their product counts."),
	)

	kit.RegisterMCPTool(srv, tool, eps.listBrands, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func registerListProducts(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("list_products",
		mcp.WithDescription("List one page of a brand's products with optional text search, facet filters and sort."),
		mcp.WithString("brand", mcp.Required(), mcp.Description("Brand id, e.g. amina")),
		mcp.WithString("filters", mcp.Description("Listing query string, e.g. q=edge&finish=black&sort=name&page=2")),
	)

	kit.RegisterMCPTool(srv, tool, eps.listProducts, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		brand, err := req.RequireString("brand")
		if err != nil {
			return nil, err
		}
		st, err := parseFilters(req.GetString("filters", ""), site.ProductFilterKeys())
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &listProductsReq{Brand: brand, State: st}}, nil
	})
}

func registerListProjects(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("list_projects",
		mcp.WithDescription("List one page of portfolio projects with optional text search and section filter."),
		mcp.WithString("filters", mcp.Description("Listing query string, e.g. q=paris&section=hospitality")),
	)

	kit.RegisterMCPTool(srv, tool, eps.listProjects, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		st, err := parseFilters(req.GetString("filters", ""), site.ProjectFilterKeys())
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &listProjectsReq{State: st}}, nil
	})
}

// parseFilters reads a listing state from the query string form used by the
// HTTP routes.
func parseFilters(raw string, keys []string) (catalog.State, error) {
	v, err := url.ParseQuery(raw)
	if err != nil {
		return catalog.State{}, err
	}
	return catalog.ParseState(v, keys), nil
}
