package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/samvera-app/samvera-stories/pkg/config"
	"github.com/samvera-app/samvera-stories/pkg/logger"
	"go.uber.org/fx"
)

// Opts holds dependencies for creating a redis client.
type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
}

// New creates a redis client and manages its lifecycle.
func New(opts Opts) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Config.Redis.Host, opts.Config.Redis.Port),
		Password: opts.Config.Redis.Pass,
		DB:       opts.Config.Redis.DB,
	})

	opts.LC.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("failed to ping redis: %w", err)
				}
				opts.Logger.Info("Connected to redis")
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		},
	)

	return client, nil
}
