// Package router assembles the gin engine: the global middleware chain, the
// public routes and the session-protected page and API groups.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	_ "github.com/iwaqasmaqbool/gms-sub002/docs"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/logger"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/handler"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/middleware"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/views"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
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
	pages      []RouteRegistrar
	api        []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
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

// Register adds a page group
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.pages = append(r.pages, registrar)
	return r
}

// RegisterAPI adds a JSON group mounted under /api/<version>
func (r *Router) RegisterAPI(registrar RouteRegistrar) *Router {
	r.api = append(r.api, registrar)
	return r
}

// Setup registers every group behind the given middleware
func (r *Router) Setup(protect ...gin.HandlerFunc) {
	pages := r.engine.Group("/", protect...)
	for _, registrar := range r.pages {
		registrar.RegisterRoutes(pages)
	}

	api := r.engine.Group("/api/"+r.apiVersion, protect...)
	for _, registrar := range r.api {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one area of the dashboard
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
	dg.routes = append(dg.routes, routeDefinition{method: http.MethodGet, path: path, handlers: handlers})
	return dg
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: http.MethodPost, path: path, handlers: handlers})
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
	group := rg.Group(dg.prefix, dg.middleware...)
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

// Handlers are the endpoints mounted by New
type Handlers struct {
	Base          handler.BaseHandler
	Auth          *handler.AuthHandler
	Dashboard     *handler.DashboardHandler
	Users         *handler.UserHandler
	Catalog       *handler.CatalogHandler
	Batches       *handler.BatchHandler
	Inventory     *handler.InventoryHandler
	Sales         *handler.SaleHandler
	Finance       *handler.FinanceHandler
	Activity      *handler.ActivityHandler
	Notifications *handler.NotificationHandler
	Reports       *handler.ReportHandler
	System        *handler.SystemHandler
}

// Config carries the middleware settings of the engine
type Config struct {
	Logger   *zap.Logger
	Renderer render.HTMLRender
	Metrics  *middleware.HTTPMetrics
	Tracing  middleware.TracingConfig
	Security middleware.SecurityConfig
	CORS     middleware.CORSConfig
	Session  middleware.SessionConfig

	MaxBodySize int64
	// Limiter bounds every request per client; LoginLimiter bounds sign-in attempts
	Limiter      *limiter.Limiter
	LoginLimiter *limiter.Limiter

	SubmitTokens   shared.IdempotencyStore
	SubmitTokenTTL time.Duration

	Swagger middleware.SwaggerConfig
}

// New builds the engine with the global middleware chain and every route
func New(cfg Config, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.HTMLRender = cfg.Renderer
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Tracing(cfg.Tracing),
		middleware.SpanEnricher(),
	)
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics.Middleware())
	}
	engine.Use(
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
	)
	if cfg.Limiter != nil {
		engine.Use(middleware.RateLimit(cfg.Limiter, middleware.ByClientIP, log))
	}

	engine.NoRoute(h.Base.NotFound)
	engine.NoMethod(h.Base.NotFound)

	// public
	engine.GET("/health", h.System.Health)
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, middleware.Session(cfg.Session)),
		ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.StaticFS("/static", views.Static())
	login := []gin.HandlerFunc{}
	if cfg.LoginLimiter != nil {
		login = append(login, middleware.PostOnly(middleware.RateLimit(cfg.LoginLimiter, middleware.ByClientIP, log)))
	}
	engine.GET("/login", append(login, h.Auth.ShowLogin)...)
	engine.POST("/login", append(login, h.Auth.Login)...)

	guard := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.SubmitTokens == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{middleware.SubmitToken(cfg.SubmitTokens, cfg.SubmitTokenTTL, log), fn}
	}

	r := NewRouter(engine)
	r.Register(NewDomainGroup("dashboard", "").
		GET("/", h.Dashboard.Show).
		POST("/logout", h.Auth.Logout).
		GET("/ws/notifications", h.Notifications.Stream).
		GET("/reports/export", h.Reports.Export))

	r.Register(NewDomainGroup("users", "/users").
		Use(middleware.RequireRoles(handler.AdminRoles...)).
		GET("", h.Users.List).
		POST("", guard(h.Users.Create)...).
		POST("/:id", guard(h.Users.Update)...))

	// reading the catalog is open to every role, changing it is not
	catalog := NewDomainGroup("catalog", "")
	catalog.GET("/products", h.Catalog.Products).
		GET("/raw-materials", h.Catalog.Materials)
	catalog.Group("catalog-edit", "").
		Use(middleware.RequireRoles(handler.ProductionRoles...)).
		POST("/products", guard(h.Catalog.CreateProduct)...).
		POST("/raw-materials", guard(h.Catalog.CreateMaterial)...).
		GET("/purchases", h.Catalog.Purchases).
		POST("/purchases", guard(h.Catalog.RecordPurchase)...)
	r.Register(catalog)

	batches := NewDomainGroup("batches", "/batches")
	batches.GET("", h.Batches.List).
		GET("/:id", h.Batches.Detail)
	batches.Group("batches-edit", "").
		Use(middleware.RequireRoles(handler.ProductionRoles...)).
		POST("", guard(h.Batches.Create)...).
		POST("/:id/status", guard(h.Batches.UpdateStatus)...).
		POST("/:id/costs", guard(h.Batches.RecordCost)...).
		POST("/:id/materials", guard(h.Batches.AllocateMaterial)...)
	r.Register(batches)

	// route-level roles are checked by the transfer itself
	r.Register(NewDomainGroup("inventory", "/inventory").
		GET("", h.Inventory.Stock).
		GET("/transfers", h.Inventory.Transfers).
		POST("/transfers", guard(h.Inventory.Transfer)...))

	r.Register(NewDomainGroup("sales", "/sales").
		Use(middleware.RequireRoles(handler.SellerRoles...)).
		GET("", h.Sales.List).
		POST("", guard(h.Sales.Create)...).
		GET("/:id", h.Sales.Detail).
		POST("/:id/payments", guard(h.Sales.RecordPayment)...))

	r.Register(NewDomainGroup("funds", "/funds").
		Use(middleware.RequireRoles(handler.FundRoles...)).
		GET("", h.Finance.Funds).
		POST("/transfer", guard(h.Finance.Transfer)...))

	r.Register(NewDomainGroup("management", "").
		Use(middleware.RequireRoles(handler.ManagerRoles...)).
		GET("/finance/summary", h.Finance.Summary).
		GET("/activity-logs", h.Activity.List))

	r.Register(NewDomainGroup("notifications", "/notifications").
		GET("", h.Notifications.List).
		POST("/read-all", h.Notifications.MarkAllRead).
		POST("/:id/read", h.Notifications.MarkRead))

	r.RegisterAPI(NewDomainGroup("users", "/users").
		Use(middleware.RequireRoles(handler.AdminRoles...)).
		GET("/:id", h.Users.Get).
		POST("/:id/toggle-activation", h.Users.ToggleActivation))
	r.RegisterAPI(NewDomainGroup("batches", "/batches").
		GET("/:id/costing", h.Batches.Costing))
	r.RegisterAPI(NewDomainGroup("notifications", "/notifications").
		GET("/unread-count", h.Notifications.UnreadCount))

	r.Setup(middleware.Session(cfg.Session))
	return engine
}
