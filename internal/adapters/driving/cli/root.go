// Package cli wires the revpipe commands. Commands build their
// collaborators through newRuntime, which reads configuration and opens
// the configured stores; the heavy lifting lives in the core services.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/parkerlabs/revpipe/internal/logger"
)

var version = "dev"

var (
	configDirFlag string
	dataDirFlag   string
	verboseFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "revpipe",
	Short: "Incremental revenue data synchronisation",
	Long: `revpipe pulls revenue and audience data from configured providers
and merges it incrementally into a durable sink. Runs are idempotent:
re-syncing a window never duplicates rows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "config directory (default ~/.revpipe)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.revpipe/data)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command with the build version.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}
