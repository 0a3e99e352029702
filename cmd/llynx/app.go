// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/llynx/llynx/internal/config"
	"github.com/llynx/llynx/internal/enabled"
	"github.com/llynx/llynx/internal/luarocks"
	"github.com/llynx/llynx/internal/settings"
	"github.com/llynx/llynx/pkg/addon"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and opens a
	// session through it.
	App struct {
		Config   ConfigProvider
		Services ServiceFactory
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Services ServiceFactory
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// Registry is the online and installed addon registry.
	Registry interface {
		Online(ctx context.Context, filter string) ([]addon.Addon, error)
		Installed(ctx context.Context, filter string) ([]addon.Addon, error)
		Lookup(ctx context.Context, name, version string) ([]addon.Addon, error)
		Install(ctx context.Context, name, version string, stdout, stderr io.Writer) error
		Remove(ctx context.Context, name, version string, stdout, stderr io.Writer) error
	}

	// EnabledSet is the set of addons enabled in the editor settings.
	EnabledSet interface {
		List(ctx context.Context, filter string) ([]addon.Addon, error)
		IsEnabled(ctx context.Context, name string) (bool, error)
		Enable(ctx context.Context, name string) (bool, error)
		Disable(ctx context.Context, name string) (bool, error)
		DisableAll(ctx context.Context, name string) (bool, error)
	}

	// Services are the collaborators built from one loaded configuration.
	Services struct {
		Registry Registry
		Enabled  EnabledSet
	}

	// ServiceFactory builds Services for a configuration.
	ServiceFactory func(cfg *config.Config, logger *log.Logger) (*Services, error)

	// session is the per-invocation state shared by a command's handler.
	session struct {
		cfg      *config.Config
		logger   *log.Logger
		services *Services
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Services == nil {
		deps.Services = newServices
	}

	return &App{
		Config:   deps.Config,
		Services: deps.Services,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}, nil
}

// newServices builds the production LuaRocks client and reconciler.
func newServices(cfg *config.Config, logger *log.Logger) (*Services, error) {
	client := luarocks.New(cfg.LuaRocks, cfg.Tree,
		luarocks.WithServer(cfg.Server),
		luarocks.WithLogger(logger),
	)

	reconciler, err := enabled.New(enabled.Options{
		Tree:      cfg.Tree,
		Settings:  settings.NewFile(cfg.Settings, cfg.LibraryKey),
		Installed: client,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &Services{Registry: client, Enabled: reconciler}, nil
}

// open loads the configuration for cmd and builds its services.
func (app *App) open(cmd *cobra.Command, flags *rootFlags) (*session, error) {
	cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: flags.configFile,
		Overrides:      flags.overrides(cmd),
	})
	if err != nil {
		return nil, err
	}

	logger := newLogger(app.stderr, cfg)
	logger.Debug("configuration loaded", "source", cfg.Source, "tree", cfg.Tree, "settings", cfg.Settings)

	services, err := app.Services(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, services: services}, nil
}

// newLogger creates the stderr logger at the configured verbosity.
func newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	levels := [...]log.Level{log.ErrorLevel, log.WarnLevel, log.InfoLevel, log.DebugLevel}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  levels[cfg.LogLevelIndex()],
	})
}
