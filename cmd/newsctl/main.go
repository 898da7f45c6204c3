// Command newsctl decodes and inspects news sheets from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "newsctl",
		Short:        "Inspect published news sheets",
		Long:         "Decodes published news sheets the way the widget does and prints records, articles or datelines.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "warn", "Log level for diagnostics on stderr")

	root.AddCommand(
		decodeCmd(),
		datelineCmd(),
		fetchCmd(),
	)
	return root
}
