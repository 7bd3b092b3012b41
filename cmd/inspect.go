package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/techquest-tech/di-bootstrap/pkg/core"
)

// NewInspectCmd bootstraps the configured modules, plus any given with
// --module, and prints the resulting descriptors.
func NewInspectCmd(app *core.App) *cobra.Command {
	var modules []string
	c := &cobra.Command{
		Use:   "inspect",
		Short: "bootstrap configured modules and list registered services",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := core.LoadSettings()
			if err != nil {
				return err
			}
			settings.Modules = lo.Uniq(append(settings.Modules, modules...))
			if err := app.BootstrapConfigured(settings); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tLIFETIME\tKIND")
			for _, d := range app.Services.Descriptors() {
				fmt.Fprintf(w, "%v\t%s\t%s\n", d.ServiceType, d.Lifetime, d.Kind())
			}
			return w.Flush()
		},
	}
	c.Flags().StringSliceVarP(&modules, "module", "m", []string{}, "extra modules to bootstrap")
	return c
}

// NewModulesCmd lists the modules known to the app's catalog.
func NewModulesCmd(app *core.App) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "list bootstrap modules available to config",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range app.Catalog.Names() {
				t, _ := app.Catalog.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", name, t)
			}
		},
	}
}

