package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samvera-app/samvera-stories/internal/feed"
	"github.com/samvera-app/samvera-stories/internal/ratelimit"
	"github.com/samvera-app/samvera-stories/pkg/config"
	"github.com/samvera-app/samvera-stories/pkg/logger"
	"go.uber.org/fx"
)

// Server exposes the story endpoints the web client's pages call.
// Authentication and session handling live in front of this service.
type Server struct {
	feed    feed.Service
	limiter ratelimit.Limiter
	logger  logger.Logger
}

func NewServer(feedSvc feed.Service, log logger.Logger) *Server {
	return &Server{
		feed:    feedSvc,
		limiter: ratelimit.NewInMemoryLimiter(1, 2*time.Second, 5),
		logger:  log,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogMiddleware(s.logger))

	r.GET("/healthz", s.healthz)

	stories := r.Group("/api/stories")
	{
		stories.GET("", s.listStories)
		stories.GET("/:id/items", s.listStoryItems)

		mutating := stories.Group("")
		mutating.Use(rateLimitMiddleware(s.limiter))
		{
			mutating.POST("", s.createStory)
			mutating.DELETE("/:id", s.deleteStory)
		}
	}

	return r
}

type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Feed   feed.Service
	Logger logger.Logger
	Config *config.Config
}

// NewHTTPServer builds the http.Server and hooks it into the fx lifecycle.
func NewHTTPServer(opts Opts) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.App.Port),
		Handler:           NewServer(opts.Feed, opts.Logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			opts.Logger.Info("Starting HTTP server", "addr", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					opts.Logger.Error("HTTP server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}

func (s *Server) healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
