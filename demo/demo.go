package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/techquest-tech/di-bootstrap/cmd"
	"github.com/techquest-tech/di-bootstrap/pkg/bootstrap"
	"github.com/techquest-tech/di-bootstrap/pkg/core"
	"github.com/techquest-tech/di-bootstrap/pkg/di"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ClockModule registers the system clock.
type ClockModule struct{}

func (ClockModule) Bootstrap(services *di.ServiceCollection) error {
	return di.AddInstance[Clock](services, systemClock{})
}

type Greeter struct {
	clock  Clock
	logger *zap.Logger
}

func (g *Greeter) Hello(name string) string {
	g.logger.Debug("greeting", zap.String("name", name))
	return fmt.Sprintf("hello %s, it's %s", name, g.clock.Now().Format(time.Kitchen))
}

// GreeterModule needs a clock, so it pulls ClockModule in itself. Applying
// both from config runs ClockModule only once.
type GreeterModule struct{}

func (GreeterModule) Bootstrap(services *di.ServiceCollection) error {
	if err := bootstrap.BootstrapOf[ClockModule](services); err != nil {
		return err
	}
	if err := di.AddTransient[*Greeter](services, func(clock Clock, logger *zap.Logger) *Greeter {
		return &Greeter{clock: clock, logger: logger}
	}); err != nil {
		return err
	}
	return di.AddFuncFactory[*Greeter](services)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main() {
	// nil logger: the app follows zap.L(), which InitLogger replaces once the
	// config, including --env overrides, is loaded.
	app, err := core.NewApp(nil)
	exitOnError(err)
	exitOnError(core.Module[ClockModule](app, "clock"))
	exitOnError(core.Module[GreeterModule](app, "greeter"))

	core.OnBootstrapped(func(collection, bootstrapper string) {
		zap.L().Info("module bootstrapped", zap.String("module", bootstrapper))
	})

	root := &cobra.Command{
		Use:   "demo",
		Short: "bootstrap demo",
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			_, err := core.InitLogger()
			return err
		},
		RunE: func(c *cobra.Command, args []string) error {
			settings, err := core.LoadSettings()
			if err != nil {
				return err
			}
			if err := app.BootstrapConfigured(settings); err != nil {
				return err
			}
			if err := core.Use[GreeterModule](app); err != nil {
				return err
			}
			provider, err := app.Start()
			if err != nil {
				return err
			}
			newGreeter := di.MustResolve[func() (*Greeter, error)](provider)
			greeter, err := newGreeter()
			if err != nil {
				return err
			}
			fmt.Println(greeter.Hello("demo"))
			return nil
		},
	}
	cmd.ApplyEnvParams(root)

	root.AddCommand(cmd.NewInspectCmd(app), cmd.NewModulesCmd(app))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
