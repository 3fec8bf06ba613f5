package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Redis struct {
		Host string `env:"REDIS_HOST" env-default:"localhost"`
		Port int    `env:"REDIS_PORT" env-default:"6379"`
		Pass string `env:"REDIS_PASS"`
		DB   int    `env:"REDIS_DB" env-default:"0"`
	}
	Stories struct {
		FeedCacheTTL    time.Duration `env:"STORIES_FEED_CACHE_TTL" env-default:"2m"`
		CleanupHour     int           `env:"STORIES_CLEANUP_HOUR" env-default:"3"`
		WarmPoolSize    int           `env:"STORIES_WARM_POOL_SIZE" env-default:"5"`
		DefaultLifetime time.Duration `env:"STORIES_DEFAULT_LIFETIME" env-default:"24h"`
	}
}

// GetDSN returns the postgres connection string in keyword form.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
