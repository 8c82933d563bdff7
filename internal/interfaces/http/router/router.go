package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its routes under a parent group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	resources  []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIVersion overrides the default "v1" path segment
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrar for Setup. Order is preserved.
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.resources = append(r.resources, registrar)
	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, res := range r.resources {
		res.RegisterRoutes(api)
	}
}

// Resource is a prefix with its own middleware chain and nested resources.
// Middleware added with Use covers the routes of the resource and its
// children, never its siblings.
type Resource struct {
	name     string
	prefix   string
	guards   []gin.HandlerFunc
	routes   []route
	children []*Resource
}

type route struct {
	method, path string
	chain        []gin.HandlerFunc
}

func NewResource(name, prefix string) *Resource {
	return &Resource{name: name, prefix: prefix}
}

func (res *Resource) Name() string   { return res.name }
func (res *Resource) Prefix() string { return res.prefix }

func (res *Resource) Use(guards ...gin.HandlerFunc) *Resource {
	res.guards = append(res.guards, guards...)
	return res
}

func (res *Resource) Handle(method, path string, chain ...gin.HandlerFunc) *Resource {
	res.routes = append(res.routes, route{method: method, path: path, chain: chain})
	return res
}

func (res *Resource) GET(path string, chain ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodGet, path, chain...)
}

func (res *Resource) POST(path string, chain ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodPost, path, chain...)
}

func (res *Resource) PATCH(path string, chain ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodPatch, path, chain...)
}

// Child returns a nested resource mounted under this one's prefix
func (res *Resource) Child(name, prefix string) *Resource {
	c := NewResource(name, prefix)
	res.children = append(res.children, c)
	return c
}

func (res *Resource) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(res.prefix, res.guards...)
	for _, rt := range res.routes {
		group.Handle(rt.method, rt.path, rt.chain...)
	}
	for _, c := range res.children {
		c.RegisterRoutes(group)
	}
}
