// Package svcctx carries shared services through context.
// It is separate from the command package so internal packages can read it.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/chapsplit/internal/config"
	"github.com/jackzampolin/chapsplit/internal/home"
)

// Services holds the services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Logger *slog.Logger
	Home   *home.Dir
	Config *config.Config
	RunID  string
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// WithLogger returns a context whose services carry logger.
// Other services already in ctx are preserved.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	s := &Services{}
	if existing := ServicesFrom(ctx); existing != nil {
		copied := *existing
		s = &copied
	}
	s.Logger = logger
	return WithServices(ctx, s)
}

// LoggerFrom extracts the logger from context, falling back to slog.Default.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

// ConfigFrom extracts the loaded configuration from context.
func ConfigFrom(ctx context.Context) *config.Config {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// RunIDFrom extracts the current run id from context.
func RunIDFrom(ctx context.Context) string {
	if s := ServicesFrom(ctx); s != nil {
		return s.RunID
	}
	return ""
}
