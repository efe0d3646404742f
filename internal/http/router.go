package http

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/yanxue-backend/internal/http/handlers"
	httpMW "github.com/yungbote/yanxue-backend/internal/http/middleware"
	"github.com/yungbote/yanxue-backend/internal/http/response"
	"github.com/yungbote/yanxue-backend/internal/observability"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware
	AIRateLimiter  *httpMW.RateLimiter

	AuthHandler     *httpH.AuthHandler
	UserHandler     *httpH.UserHandler
	CourseHandler   *httpH.CourseHandler
	ResourceHandler *httpH.ResourceHandler
	AIHandler       *httpH.AIHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Banner)
		r.GET("/api", cfg.HealthHandler.Banner)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		api.POST("/users/register", cfg.AuthHandler.Register)
		api.POST("/users/login", cfg.AuthHandler.Login)
	}

	protected := api.Group("")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.Handle())
	}

	// Users
	if cfg.UserHandler != nil {
		protected.GET("/users", cfg.UserHandler.List)
		protected.POST("/users", cfg.UserHandler.Create)
		protected.GET("/users/:id", cfg.UserHandler.Get)
		protected.PUT("/users/:id", cfg.UserHandler.Update)
		protected.DELETE("/users/:id", cfg.UserHandler.Delete)
	}

	// Courses
	if cfg.CourseHandler != nil {
		protected.GET("/courses", cfg.CourseHandler.List)
		protected.POST("/courses", cfg.CourseHandler.Create)
		protected.GET("/courses/:id", cfg.CourseHandler.Get)
		protected.PUT("/courses/:id", cfg.CourseHandler.Update)
		protected.DELETE("/courses/:id", cfg.CourseHandler.Delete)
		protected.GET("/courses/:id/generations", cfg.CourseHandler.Generations)
	}

	// Resources
	if cfg.ResourceHandler != nil {
		protected.GET("/resources", cfg.ResourceHandler.List)
		protected.POST("/resources", cfg.ResourceHandler.Create)
		protected.GET("/resources/:id", cfg.ResourceHandler.Get)
		protected.PUT("/resources/:id", cfg.ResourceHandler.Update)
		protected.DELETE("/resources/:id", cfg.ResourceHandler.Delete)
	}

	// AI generation
	if cfg.AIHandler != nil {
		ai := protected.Group("/ai")
		generate := ai.Group("")
		if cfg.AIRateLimiter != nil {
			generate.Use(cfg.AIRateLimiter.Handler())
		}
		for path, kind := range httpH.AIRoutes {
			generate.POST("/"+path, cfg.AIHandler.Generate(kind))
		}
		ai.GET("/records", cfg.AIHandler.ListRecords)
		ai.GET("/records/:id", cfg.AIHandler.GetRecord)
		ai.GET("/schemas/:kind", cfg.AIHandler.Schema)
	}

	routes := r.Routes()
	r.NoMethod(func(c *gin.Context) {
		if allowed := allowedMethods(routes, c.Request.URL.Path); len(allowed) > 0 {
			c.Header("Allow", strings.Join(allowed, ", "))
		}
		response.RespondStatus(c, http.StatusMethodNotAllowed, "Method "+c.Request.Method+" not allowed")
	})
	r.NoRoute(func(c *gin.Context) {
		response.RespondStatus(c, http.StatusNotFound, "Not Found - "+c.Request.URL.Path)
	})

	return r
}

// allowedMethods lists the methods registered for any route pattern matching
// path. Only registered methods are listed, so HEAD and OPTIONS never appear.
func allowedMethods(routes gin.RoutesInfo, path string) []string {
	seen := map[string]bool{}
	for _, ri := range routes {
		if matchRoute(ri.Path, path) {
			seen[ri.Method] = true
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func matchRoute(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range ps {
		if strings.HasPrefix(seg, "*") {
			return true
		}
		if i >= len(xs) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if seg != xs[i] {
			return false
		}
	}
	return len(ps) == len(xs)
}
