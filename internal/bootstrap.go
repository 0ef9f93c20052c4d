package internal

import (
	"io"

	"github.com/BenRutlandWeb/atomic-framework/middlewares"
	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
)

// Bootstrapper is one step of bringing an application up.
type Bootstrapper interface {
	Bootstrap(app *Application) error
}

// BootstrapperFunc adapts a function to Bootstrapper.
type BootstrapperFunc func(app *Application) error

func (f BootstrapperFunc) Bootstrap(app *Application) error { return f(app) }

// DefaultBootstrappers returns the steps the kernel runs: load the
// configuration, register the configured providers, boot every provider.
func DefaultBootstrappers() []Bootstrapper {
	return []Bootstrapper{
		&LoadConfiguration{},
		RegisterProviders{},
		BootProviders{},
	}
}

// LoadConfiguration reads the config directory of the project, unless the
// application was given a repository, and rebuilds the logger from the
// "logging" section when present.
type LoadConfiguration struct {
	// Dir is the config directory. Defaults to "config".
	Dir string
	// Output receives log records. Defaults to stdout.
	Output io.Writer
}

func (b *LoadConfiguration) Bootstrap(app *Application) error {
	repo := app.Config()
	if !app.configured {
		dir := b.Dir
		if dir == "" {
			dir = "config"
		}
		fsys, err := app.FS(dir)
		if err != nil {
			return err
		}
		if err := repo.LoadDir(fsys); err != nil {
			return err
		}
		app.configured = true
	}

	if repo.Has("logging") {
		var cfg logger.Config
		if err := repo.Unmarshal("logging", &cfg); err != nil {
			return err
		}
		if cfg.Environment == "" {
			cfg.Environment = repo.String("app.env")
		}
		app.SetLogger(logger.NewFromConfig(cfg, b.Output, middlewares.RequestIDExtractor()))
	}
	return nil
}

// RegisterProviders registers the providers named in app.providers.
type RegisterProviders struct{}

func (RegisterProviders) Bootstrap(app *Application) error {
	return app.RegisterConfiguredProviders()
}

// BootProviders boots every registered provider.
type BootProviders struct{}

func (BootProviders) Bootstrap(app *Application) error {
	return app.Boot()
}
