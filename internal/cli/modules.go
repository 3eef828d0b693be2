package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subsort/subsort/internal/modules"
	"github.com/subsort/subsort/internal/scanner"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List available analysis modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := scanner.NewRegistry()
		modules.RegisterAll(reg)

		for _, name := range reg.Names() {
			m, err := reg.Build(name, nil, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %s\n", m.Name(), m.Description())
		}
		return nil
	},
}
