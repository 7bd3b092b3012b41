package cmd

import (
	"github.com/spf13/cobra"
	"github.com/techquest-tech/di-bootstrap/pkg/core"
)

func ApplyEnvParams(c *cobra.Command) {
	c.PersistentFlags().StringSliceVarP(&core.EnvValues, "env", "e", []string{}, "set env values")
}
