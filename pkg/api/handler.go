package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/showroom/pkg/catalog"
	"github.com/hazyhaar/showroom/pkg/kit"
	"github.com/hazyhaar/showroom/pkg/site"
	"github.com/mark3labs/mcp-go/server"
)

type options struct {
	logger    *slog.Logger
	searchLog kit.Middleware
	mcp       *server.MCPServer
}

// Option configures the router.
type Option func(*options)

// WithLogger sets the logger used by the endpoint middleware.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSearchLog wraps the search endpoint with mw, typically a search log
// recorder.
func WithSearchLog(mw kit.Middleware) Option {
	return func(o *options) { o.searchLog = mw }
}

// WithMCP mounts srv as a streamable HTTP MCP endpoint at /mcp.
func WithMCP(srv *server.MCPServer) Option {
	return func(o *options) { o.mcp = srv }
}

// NewRouter returns an http.Handler with all showroom API routes.
func NewRouter(reg *site.Registry, opts ...Option) http.Handler {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	mux := http.NewServeMux()
	h := &handler{eps: newEndpoints(reg, o), reg: reg}

	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.HandleFunc("GET /v1/brands", h.cached(h.handleListBrands))
	mux.HandleFunc("GET /v1/brands/{brand}/products", h.cached(h.handleListProducts))
	mux.HandleFunc("GET /v1/brands/{brand}/products/{slug}", h.cached(h.handleProduct))
	mux.HandleFunc("GET /v1/brands/{brand}/facets/{key}", h.cached(h.handleFacet))
	mux.HandleFunc("GET /v1/projects", h.cached(h.handleListProjects))
	mux.HandleFunc("GET /v1/projects/{slug}", h.cached(h.handleProject))
	// Every search must reach the search log, so no 304 here.
	mux.HandleFunc("GET /v1/search", h.handleSearch)

	if o.mcp != nil {
		mux.Handle("/mcp", server.NewStreamableHTTPServer(o.mcp, server.WithEndpointPath("/mcp")))
	}

	return cors(mux)
}

type handler struct {
	eps *endpoints
	reg *site.Registry
}

// --- search ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.search, &searchReq{Query: r.URL.Query().Get(catalog.ParamQuery)})
}

// --- brands and products ---

func (h *handler) handleListBrands(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.listBrands, nil)
}

func (h *handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.listProducts, &listProductsReq{
		Brand: r.PathValue("brand"),
		State: catalog.ParseState(r.URL.Query(), site.ProductFilterKeys()),
	})
}

func (h *handler) handleProduct(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.product, &productReq{
		Brand: r.PathValue("brand"),
		Slug:  r.PathValue("slug"),
	})
}

func (h *handler) handleFacet(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.facet, &facetReq{
		Brand: r.PathValue("brand"),
		Key:   r.PathValue("key"),
		State: catalog.ParseState(r.URL.Query(), site.ProductFilterKeys()),
	})
}

// --- projects ---

func (h *handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.listProjects, &listProjectsReq{
		State: catalog.ParseState(r.URL.Query(), site.ProjectFilterKeys()),
	})
}

func (h *handler) handleProject(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.project, &projectReq{Slug: r.PathValue("slug")})
}

// --- health ---

type healthResponse struct {
	Status  string      `json:"status"`
	Version string      `json:"version"`
	Counts  site.Counts `json:"counts"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	s, err := h.reg.Site()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.Version(),
		Counts:  s.Counts(),
	})
}

// --- helpers ---

func (h *handler) serve(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any) {
	resp, err := ep(kit.WithTransport(r.Context(), "http"), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// cached answers 304 when the client already holds the current content
// version. Responses carry the version as their ETag.
func (h *handler) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if v := h.reg.Version(); v != "" {
			etag := `"` + v + `"`
			w.Header().Set("ETag", etag)
			if r.Header.Get("If-None-Match") == etag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		next(w, r)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, site.ErrUnknownBrand),
		errors.Is(err, site.ErrNotFound),
		errors.Is(err, site.ErrUnknownFacet):
		return http.StatusNotFound
	case errors.Is(err, site.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match, Mcp-Session-Id")
		w.Header().Set("Access-Control-Expose-Headers", "ETag, Mcp-Session-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
