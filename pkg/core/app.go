package core

import (
	"runtime"

	"github.com/asaskevich/EventBus"
	"github.com/techquest-tech/di-bootstrap/pkg/bootstrap"
	"github.com/techquest-tech/di-bootstrap/pkg/di"
	"go.uber.org/zap"
)

// App bundles the collection an application registers into with the
// dispatcher and catalog used to bootstrap it.
type App struct {
	Services   *di.ServiceCollection
	Catalog    *bootstrap.Catalog
	Dispatcher *bootstrap.Dispatcher
	Logger     *zap.Logger

	components []Component
}

// NewApp creates an App whose collection already holds the logger and the
// event bus. With a nil logger the App follows zap.L(), so a logger built
// later by InitLogger is picked up.
func NewApp(logger *zap.Logger) (*App, error) {
	catalog := bootstrap.NewCatalog()
	opts := []bootstrap.Option{
		bootstrap.WithBus(Bus),
		bootstrap.WithCatalog(catalog),
	}
	if logger != nil {
		opts = append(opts, bootstrap.WithLogger(logger))
	}
	app := &App{
		Services:   di.NewCollection(),
		Catalog:    catalog,
		Dispatcher: bootstrap.NewDispatcher(opts...),
		Logger:     logger,
	}

	var err error
	if logger != nil {
		err = di.AddInstance(app.Services, logger)
	} else {
		err = di.AddSingleton[*zap.Logger](app.Services, zap.L)
	}
	if err != nil {
		return nil, err
	}
	if err := di.AddInstance[EventBus.Bus](app.Services, Bus); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) log() *zap.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.L()
}

// Module makes T available to configuration under name.
func Module[T any, PT interface {
	*T
	bootstrap.ServicesBootstrapper
}](app *App, name string) error {
	return bootstrap.Register[T, PT](app.Catalog, name)
}

// Use applies T to the app's collection.
func Use[T any, PT interface {
	*T
	bootstrap.ServicesBootstrapper
}](app *App) error {
	return bootstrap.BootstrapWith[T, PT](app.Dispatcher, app.Services)
}

// BootstrapConfigured applies the modules listed in settings.
func (a *App) BootstrapConfigured(settings Settings) error {
	if len(settings.Modules) == 0 {
		a.log().Warn("no bootstrap modules configured.")
		return nil
	}
	a.log().Info("bootstrap configured modules", zap.Strings("modules", settings.Modules))
	return a.Dispatcher.BootstrapNamed(a.Services, settings.Modules...)
}

// Start builds the provider, runs the registered components and publishes
// EventStarted.
func (a *App) Start() (*di.Provider, error) {
	provider, err := a.Services.Build()
	if err != nil {
		a.log().Error("build service provider failed.", zap.Error(err))
		return nil, err
	}
	if err := a.initComponents(provider); err != nil {
		return nil, err
	}
	a.PrintVersion()
	Bus.Publish(EventStarted)
	return provider, nil
}

func (a *App) PrintVersion() {
	a.log().Info("Application info:", zap.String("appName", AppName),
		zap.String("version", Version),
		zap.String("Go version", runtime.Version()),
		zap.Int("services", a.Services.Len()),
	)
}
