package app

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/samvera-app/samvera-stories/internal/api"
	"github.com/samvera-app/samvera-stories/internal/feed"
	"github.com/samvera-app/samvera-stories/internal/feed/feedimpl"
	_ "github.com/samvera-app/samvera-stories/internal/migrations"
	repositories "github.com/samvera-app/samvera-stories/internal/repositories/fx"
	"github.com/samvera-app/samvera-stories/pkg/config"
	"github.com/samvera-app/samvera-stories/pkg/logger"
	"github.com/samvera-app/samvera-stories/pkg/pgx"
	appredis "github.com/samvera-app/samvera-stories/pkg/redis"
	"go.uber.org/fx"
)

var App = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		appredis.New,
	),
	fx.Provide(
		fx.Annotate(
			feed.NewRedisCache,
			fx.As(new(feed.Cache)),
		),
		fx.Annotate(
			feedimpl.New,
			fx.As(new(feed.Service)),
		),
	),
	repositories.Module,
	fx.Provide(api.NewHTTPServer),
	fx.Invoke(
		func(c *config.Config) error {
			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}

			db, err := sql.Open("postgres", c.GetDSN())
			if err != nil {
				return err
			}
			defer db.Close()

			// Schema lives in registered Go migrations; no SQL directory.
			return goose.Up(db, ".")
		}),
	fx.Invoke(func(*http.Server) {}),
	fx.Invoke(run),
)

func run(lc fx.Lifecycle, log logger.Logger, feedSvc feed.Service) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := feedSvc.ScheduleExpiredCleanup(ctx); err != nil {
				log.Error("Failed to schedule story cleanup", "error", err)
				return err
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
