package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subsort/subsort/internal/config"
)

var version = "dev"

var (
	verboseFlag bool
	silentFlag  bool
	logFileFlag string
)

// appConfig holds the loaded configuration, available after PersistentPreRunE.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "subsort",
	Short: "Subsort — bulk subdomain reconnaissance",
	Long: `Subsort takes a list of hostnames and probes each one over HTTP,
running the enabled analysis modules against every target and writing
one consolidated record per hostname.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		config.ApplyFlags(cfg, cmd)

		if err := cfg.Validate(); err != nil {
			return err
		}

		appConfig = cfg
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&silentFlag, "silent", false, "suppress the banner and progress output")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "also write logs to this file")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(versionCmd)
}
