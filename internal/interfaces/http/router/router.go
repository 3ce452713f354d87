// Package router assembles the gin engine: middleware chain, health route and
// the /api/v1 groups.
package router

import (
	"net/http"

	"github.com/agencyos/backend/internal/infrastructure/config"
	"github.com/agencyos/backend/internal/infrastructure/logger"
	"github.com/agencyos/backend/internal/infrastructure/telemetry"
	"github.com/agencyos/backend/internal/interfaces/http/handler"
	"github.com/agencyos/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAPIMiddleware adds middleware that runs on versioned routes only
func WithAPIMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup creates a route group for a specific domain
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Handlers are the endpoint groups the engine serves. Auth is optional.
type Handlers struct {
	Records   *handler.RecordHandler
	System    *handler.SystemHandler
	Activity  *handler.ActivityHandler
	Reports   *handler.ReportHandler
	Documents *handler.DocumentHandler
	Auth      *handler.AuthHandler
}

// Options configure the engine's middleware
type Options struct {
	ServiceName string
	HTTP        config.HTTPConfig
	Logger      *zap.Logger
	// Tokens enables bearer auth on mutating routes when set
	Tokens      middleware.Validator
	RateLimiter *middleware.RateLimiter
	Metrics     *telemetry.HTTPMetrics
	Tracing     bool
	Profiling   bool
}

// New builds the engine. Middleware order: request id, security headers,
// CORS, access log, recovery, tracing, metrics, profiling, body limit, rate
// limit; API routes then add auth and span attributes.
func New(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	if opts.Tracing {
		engine.Use(middleware.Tracing(opts.ServiceName))
	}
	engine.Use(middleware.Metrics(opts.Metrics))
	if opts.Profiling {
		engine.Use(middleware.Profiling(middleware.DefaultProfilingConfig()))
	}
	engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}

	engine.NoRoute(func(c *gin.Context) {
		(&handler.BaseHandler{}).NotFound(c, "Route not found")
	})
	engine.GET("/health", h.System.Health)

	var apiMiddleware []gin.HandlerFunc
	if opts.Tokens != nil {
		apiMiddleware = append(apiMiddleware, middleware.Auth(opts.Tokens, log))
	}
	if opts.Tracing {
		apiMiddleware = append(apiMiddleware, middleware.TraceAttributes())
	}

	r := NewRouter(engine, WithAPIMiddleware(apiMiddleware...))
	for _, group := range groups(h) {
		r.Register(group)
	}
	r.Setup()
	return engine
}

// groups lists the API route groups. Fixed paths are registered next to the
// /:module wildcard; gin prefers the static segment.
func groups(h Handlers) []*DomainGroup {
	reference := NewDomainGroup("reference", "").
		GET("/brands", h.System.Brands).
		GET("/modules", h.Records.Catalogue).
		GET("/activity", h.Activity.List)

	reports := NewDomainGroup("reports", "/reports").
		GET("/summary", h.Reports.Summary).
		POST("/export/:module", h.Reports.Export).
		GET("/exports/*key", h.Reports.Download)

	records := NewDomainGroup("records", "").
		GET("/:module", h.Records.List).
		POST("/:module", h.Records.Create).
		POST("/:module/reset", h.Records.Reset).
		GET("/:module/:id", h.Records.Get).
		PUT("/:module/:id", h.Records.Update).
		POST("/:module/:id/transition", h.Records.Transition).
		POST("/:module/:id/advance", h.Records.Advance).
		GET("/:module/:id/document", h.Documents.Invoice).
		GET("/:module/:id/secret", h.Documents.Secret)

	out := []*DomainGroup{reference, reports, records}
	if h.Auth != nil {
		out = append(out, NewDomainGroup("auth", "/auth").POST("/token", h.Auth.Token))
	}
	return out
}
