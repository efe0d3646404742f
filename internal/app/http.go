package app

import (
	"database/sql"

	"github.com/yungbote/yanxue-backend/internal/http"
	httpH "github.com/yungbote/yanxue-backend/internal/http/handlers"
	httpMW "github.com/yungbote/yanxue-backend/internal/http/middleware"
	"github.com/yungbote/yanxue-backend/internal/observability"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

type Middleware struct {
	Auth          *httpMW.AuthMiddleware
	AIRateLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	User     *httpH.UserHandler
	Course   *httpH.CourseHandler
	Resource *httpH.ResourceHandler
	AI       *httpH.AIHandler
}

func wireHandlers(log *logger.Logger, services Services, sqlDB *sql.DB) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	return Handlers{
		Health:   httpH.NewHealthHandler(pinger, services.Generation.Mode()),
		Auth:     httpH.NewAuthHandler(log, services.Auth),
		User:     httpH.NewUserHandler(log, services.User),
		Course:   httpH.NewCourseHandler(log, services.Course, services.Generation),
		Resource: httpH.NewResourceHandler(log, services.Resource),
		AI:       httpH.NewAIHandler(log, services.Generation),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:          httpMW.NewAuthMiddleware(log, services.Auth, cfg.AuthRequired),
		AIRateLimiter: httpMW.NewRateLimiter(cfg.AIRateLimitPerMin, metrics),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.CORSOrigins,
		AuthMiddleware:  middleware.Auth,
		AIRateLimiter:   middleware.AIRateLimiter,
		HealthHandler:   handlers.Health,
		AuthHandler:     handlers.Auth,
		UserHandler:     handlers.User,
		CourseHandler:   handlers.Course,
		ResourceHandler: handlers.Resource,
		AIHandler:       handlers.AI,
	})
}
