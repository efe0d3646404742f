package app

import (
	"fmt"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/coursegen/fallback"
	"github.com/yungbote/yanxue-backend/internal/observability"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"github.com/yungbote/yanxue-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Course     services.CourseService
	Resource   services.ResourceService
	Generation services.GenerationService
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := fallback.Load(log)
	if err != nil {
		return Services{}, fmt.Errorf("load fallback catalog: %w", err)
	}

	var generator coursegen.Generator
	if clients.OpenAI != nil {
		generator = clients.OpenAI
	}
	var events services.EventPublisher
	if clients.EventBus != nil {
		events = clients.EventBus
	}

	return Services{
		Auth:       services.NewAuthService(log, repos.User, cfg.JWTSecret, cfg.JWTExpiresIn, cfg.TestAccount),
		User:       services.NewUserService(log, repos.User),
		Course:     services.NewCourseService(log, repos.Course, repos.User),
		Resource:   services.NewResourceService(log, repos.Resource),
		Generation: services.NewGenerationService(log, repos.Generation, generator, catalog, events, metrics),
	}, nil
}
