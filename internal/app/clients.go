package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/yanxue-backend/internal/clients/redis"
	"github.com/yungbote/yanxue-backend/internal/observability"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"github.com/yungbote/yanxue-backend/internal/platform/openai"
)

// Clients holds the optional outbound integrations. A nil field means the
// integration is not configured.
type Clients struct {
	OpenAI   *openai.Client
	EventBus redis.EventBus
}

func wireClients(cfg Config, log *logger.Logger, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	var out Clients
	if cfg.Live() {
		c, err := openai.NewClient(cfg.OpenAI, log, metrics)
		if err != nil {
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		out.OpenAI = c
		log.Info("Generation mode: live", "model", c.Model())
	} else {
		log.Warn("OPENAI_API_KEY not set, generation uses the local fallback catalog")
	}

	if strings.TrimSpace(cfg.RedisAddr) != "" {
		bus, err := redis.NewEventBus(redis.Config{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel}, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		out.EventBus = bus
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.EventBus != nil {
		_ = c.EventBus.Close()
	}
}
