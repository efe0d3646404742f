package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/yanxue-backend/internal/app"
	"github.com/yungbote/yanxue-backend/internal/clients/redis"
)

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print generation events published on the Redis channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.RedisAddr) == "" {
				return fmt.Errorf("REDIS_ADDR is not set")
			}
			log, err := app.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			bus, err := redis.NewEventBus(redis.Config{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel}, log)
			if err != nil {
				return err
			}
			defer bus.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			err = bus.Subscribe(ctx, func(ev redis.Event) {
				_ = enc.Encode(ev)
			})
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
