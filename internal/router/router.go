package router

import (
	"time"

	"github.com/gin-gonic/gin"

	promhandler "github.com/jwalitptl/clinic-directory/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-directory/internal/middleware"
	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/pkg/validator"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Handlers groups the route sets by audience.
type Handlers struct {
	Health     Handler
	Catalog    Handler
	Search     Handler
	Lead       Handler
	Admin      Handler
	Moderation Handler
	Portal     Handler
	Patient    Handler
	Realtime   Handler
}

type Config struct {
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration
	BodyLimit      int64
	// MetricsPath mounts the scrape endpoint; empty disables it.
	MetricsPath string
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *promhandler.Handler
	config   Config
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, metrics *promhandler.Handler, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	validator.RegisterGin()

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.BodyLimit <= 0 {
		config.BodyLimit = 2 << 20
	}

	engine := gin.New()
	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  metrics,
		config:   config,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORS),
	)
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}

	return r
}

// Setup mounts every route. The versioned API lives under /api/v1; the
// unversioned /api paths used by the web app are aliases of the same handlers.
func (r *Router) Setup() {
	r.handlers.Health.RegisterRoutes(r.engine.Group(""))
	if r.metrics != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.metrics.Handler())
	}

	v1 := r.engine.Group("/api/v1")
	v1.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	// Websockets outlive the request timeout.
	r.handlers.Realtime.RegisterRoutes(v1)

	api := v1.Group("", middleware.Timeout(r.config.RequestTimeout), middleware.BodyLimit(r.config.BodyLimit))
	r.setupPublicRoutes(api)
	r.setupProtectedRoutes(api)

	alias := r.engine.Group("/api", middleware.Timeout(r.config.RequestTimeout), middleware.BodyLimit(r.config.BodyLimit))
	r.setupAliases(alias)
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	public := rg.Group("", middleware.Cache(middleware.PublicCatalogCache()))
	r.handlers.Catalog.RegisterRoutes(public)
	r.handlers.Search.RegisterRoutes(public)
	r.handlers.Lead.RegisterRoutes(rg)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("", r.auth.Authenticate(), r.auth.RequireRole(model.RoleAdmin))
	r.handlers.Admin.RegisterRoutes(admin)
	r.handlers.Moderation.RegisterRoutes(admin)

	portal := rg.Group("", r.auth.Authenticate(), r.auth.RequireRole(model.RoleCustomer))
	r.handlers.Portal.RegisterRoutes(portal)

	patient := rg.Group("", r.auth.Authenticate(), r.auth.RequireRole(model.RolePatient))
	r.handlers.Patient.RegisterRoutes(patient)
}

func (r *Router) setupAliases(rg *gin.RouterGroup) {
	r.handlers.Search.RegisterRoutes(rg.Group("", middleware.Cache(middleware.PublicCatalogCache())))
	r.handlers.Lead.RegisterRoutes(rg)
	r.handlers.Admin.RegisterRoutes(rg.Group("", r.auth.Authenticate(), r.auth.RequireRole(model.RoleAdmin)))
	r.handlers.Patient.RegisterRoutes(rg.Group("", r.auth.Authenticate(), r.auth.RequireRole(model.RolePatient)))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
