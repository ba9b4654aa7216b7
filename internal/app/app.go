package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cortexmark/cortexmark/internal/anngraph"
	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/ctxlog"
	"github.com/cortexmark/cortexmark/internal/figure"
	"github.com/cortexmark/cortexmark/internal/registry"
	"github.com/cortexmark/cortexmark/internal/resolver"
	"github.com/cortexmark/cortexmark/internal/session"
	"github.com/cortexmark/cortexmark/internal/store"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	registry *registry.Registry
	shared   any
	resolver *resolver.Resolver
	store    *store.Store
	figures  *figure.Generator
	session  *session.Session
}

// New is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func New(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all configuration into the format-agnostic model first.
	model, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// A dependency cycle among annotations is a configuration error whether
	// or not the involved annotations are ever active together; reject it up
	// front rather than on first selection.
	if _, err := anngraph.Build(model.AnnotationsInOrder()); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("Configuration model validated.")

	// Create and populate the registry with Go hook modules.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	// Validate that every hook the model names is actually registered.
	if err := reg.Validate(ctx, model); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	var shared any
	if model.InitHook != "" {
		hook, _ := reg.Init(model.InitHook)
		shared, err = hook(ctx)
		if err != nil {
			return nil, fmt.Errorf("init hook %q: %w", model.InitHook, err)
		}
		logger.Debug("Init hook completed.", "hook", model.InitHook)
	}

	res, err := resolver.New(model, reg, shared, appConfig.MemoSize)
	if err != nil {
		return nil, err
	}
	st := store.New(appConfig.SavePath)
	figs := figure.New(appConfig.CachePath, model, reg, shared)
	sess := session.New(model, res, st, figs, reg, shared, appConfig.User)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		model:    model,
		registry: reg,
		shared:   shared,
		resolver: res,
		store:    st,
		figures:  figs,
		session:  sess,
	}, nil
}

// Model returns the loaded configuration model.
func (a *App) Model() *config.Model { return a.model }

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Session returns the editing session.
func (a *App) Session() *session.Session { return a.session }

// Resolver returns the target resolver.
func (a *App) Resolver() *resolver.Resolver { return a.resolver }

// Store returns the annotation store.
func (a *App) Store() *store.Store { return a.store }

// Figures returns the figure generator.
func (a *App) Figures() *figure.Generator { return a.figures }

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger { return a.logger }
