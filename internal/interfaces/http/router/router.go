package router

import (
	"net/http"
	"path"
	"sort"

	"github.com/gin-gonic/gin"
)

// Route is a single endpoint declared on a DomainGroup.
type Route struct {
	Method string
	Path   string
	// Write marks routes that persist state; they run behind the write guard.
	Write   bool
	handler gin.HandlerFunc
}

// DomainGroup collects the routes of one bounded context under a prefix.
type DomainGroup struct {
	name   string
	prefix string
	routes []Route
}

// NewDomainGroup creates an empty group mounted at prefix.
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (g *DomainGroup) Name() string   { return g.name }
func (g *DomainGroup) Prefix() string { return g.prefix }

// GET declares a read-only GET route.
func (g *DomainGroup) GET(p string, h gin.HandlerFunc) *DomainGroup {
	return g.add(Route{Method: http.MethodGet, Path: p, handler: h})
}

// POST declares a POST route that only computes and persists nothing.
func (g *DomainGroup) POST(p string, h gin.HandlerFunc) *DomainGroup {
	return g.add(Route{Method: http.MethodPost, Path: p, handler: h})
}

// Write declares a state-changing route.
func (g *DomainGroup) Write(method, p string, h gin.HandlerFunc) *DomainGroup {
	return g.add(Route{Method: method, Path: p, Write: true, handler: h})
}

func (g *DomainGroup) add(r Route) *DomainGroup {
	g.routes = append(g.routes, r)
	return g
}

// Routes returns the declared routes with their paths joined to the group prefix.
func (g *DomainGroup) Routes() []Route {
	out := make([]Route, len(g.routes))
	for i, r := range g.routes {
		r.Path = joinPath(g.prefix, r.Path)
		out[i] = r
	}
	return out
}

func (g *DomainGroup) mount(api *gin.RouterGroup, guard gin.HandlerFunc) {
	group := api.Group(g.prefix)
	for _, r := range g.routes {
		if r.Write && guard != nil {
			group.Handle(r.Method, r.Path, guard, r.handler)
			continue
		}
		group.Handle(r.Method, r.Path, r.handler)
	}
}

// Router mounts domain groups under a versioned API prefix.
type Router struct {
	engine     *gin.Engine
	version    string
	guard      gin.HandlerFunc
	middleware []gin.HandlerFunc
	groups     []*DomainGroup
}

// Option configures a Router.
type Option func(*Router)

// WithAPIVersion sets the version segment of the API prefix. Default "v1".
func WithAPIVersion(version string) Option {
	return func(r *Router) { r.version = version }
}

// WithWriteGuard runs guard in front of every Write route.
func WithWriteGuard(guard gin.HandlerFunc) Option {
	return func(r *Router) { r.guard = guard }
}

// WithMiddleware adds handlers that run for every versioned route and for nothing else.
func WithMiddleware(mw ...gin.HandlerFunc) Option {
	return func(r *Router) { r.middleware = append(r.middleware, mw...) }
}

func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues groups for Mount.
func (r *Router) Register(groups ...*DomainGroup) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

// BasePath is the prefix every group is mounted under.
func (r *Router) BasePath() string {
	return "/api/" + r.version
}

// Mount registers every queued group on the engine.
func (r *Router) Mount() {
	api := r.engine.Group(r.BasePath(), r.middleware...)
	for _, g := range r.groups {
		g.mount(api, r.guard)
	}
}

// Routes lists every declared route with its full path, sorted by path then method.
func (r *Router) Routes() []Route {
	var out []Route
	for _, g := range r.groups {
		for _, route := range g.Routes() {
			route.Path = joinPath(r.BasePath(), route.Path)
			out = append(out, route)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func joinPath(base, rel string) string {
	if rel == "" {
		return base
	}
	joined := path.Join(base, rel)
	if rel[len(rel)-1] == '/' && joined[len(joined)-1] != '/' {
		joined += "/"
	}
	return joined
}
