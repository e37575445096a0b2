package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/vk/catalogplan/internal/config"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/decision"
	"github.com/vk/catalogplan/internal/metrics"
	"github.com/vk/catalogplan/internal/settings"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	inR      io.Reader
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	settings *settings.Settings
	metrics  *metrics.Metrics
	decider  decision.Decider
}

// Option customizes an App.
type Option func(*App)

// WithDecider replaces the decider chosen from the configuration.
func WithDecider(d decision.Decider) Option {
	return func(a *App) { a.decider = d }
}

// WithInput sets the reader the interactive decider reads answers from.
func WithInput(r io.Reader) Option {
	return func(a *App) { a.inR = r }
}

// NewApp is the constructor for the main application. It loads the
// settings and prepares the logger, metrics and conflict decider.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	s, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	if cfg.Architecture != "" {
		s.Architecture = cfg.Architecture
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	logger.Debug("Settings loaded.", "architecture", s.Architecture, "max_retries", s.MaxRetries)

	a := &App{
		outW:     outW,
		inR:      os.Stdin,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		settings: s,
		metrics:  metrics.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.decider == nil {
		if a.decider, err = a.newDecider(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *App) newDecider() (decision.Decider, error) {
	if a.config.Interactive {
		return &decision.Prompt{In: a.inR, Out: a.outW, Accessible: !isTerminal(a.inR)}, nil
	}
	conflicts, err := decision.Parse(a.settings.Policy.Conflicts)
	if err != nil {
		return nil, fmt.Errorf("conflict policy: %w", err)
	}
	unavailable, err := decision.Parse(a.settings.Policy.Unavailable)
	if err != nil {
		return nil, fmt.Errorf("unavailable policy: %w", err)
	}
	return decision.Fixed{Conflicts: conflicts, Unavailable: unavailable}, nil
}

// isTerminal reports whether r is an interactive terminal. Piped or
// redirected input gets the line-based prompt.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Settings returns the effective settings.
func (a *App) Settings() *settings.Settings {
	return a.settings
}

// Metrics returns the metrics of the app's runs. This is primarily for testing.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Context returns ctx carrying the app's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
