package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set at build time
var version = "0.0.0"

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "darkwatt",
		Short:         "darkwatt - screen luminance and dark-theme energy savings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default darkwatt.toml in the config dir or cwd)")

	root.AddCommand(
		newServeCmd(&configFile),
		newClassifyCmd(),
		newStatsCmd(&configFile),
		&cobra.Command{
			Use:   "version",
			Short: "Print darkwatt version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "v"+version)
			},
		},
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
