package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// Logger is the logging surface the rest of the service depends on. Arguments
// after the message are alternating key/value pairs, slog style.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

type Opts struct {
	Env       string
	SentryUrl string
}

type Impl struct {
	slog *slog.Logger
}

// New builds the process logger: zerolog to the console (pretty in
// development, JSON otherwise) and, when a DSN is configured, errors fanned
// out to Sentry as well.
func New(opts Opts) *Impl {
	var out zerolog.Logger
	level := slog.LevelInfo
	if opts.Env == "development" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
		level = slog.LevelDebug
	} else {
		out = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	handlers := []slog.Handler{
		slogzerolog.Option{Level: level, Logger: &out}.NewZerologHandler(),
	}

	if opts.SentryUrl != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryUrl,
			Environment: opts.Env,
		}); err != nil {
			out.Warn().Err(err).Msg("sentry init failed, continuing without it")
		} else {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		}
	}

	return &Impl{slog: slog.New(slogmulti.Fanout(handlers...))}
}

func (l *Impl) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Impl) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Impl) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Impl) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

func (l *Impl) With(args ...any) Logger {
	return &Impl{slog: l.slog.With(args...)}
}

// Printf adapts the logger to fx's logging hook.
func (l *Impl) Printf(format string, args ...any) {
	l.slog.Info(fmt.Sprintf(format, args...))
}

var _ Logger = (*Impl)(nil)

// Nop returns a logger that discards everything. Handy for library consumers
// and tests that do not care about output.
func Nop() Logger {
	return &Impl{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
