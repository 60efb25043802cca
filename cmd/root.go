package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	flagFile     string
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "pwvault",
	Short: "pwvault keeps credentials in a single encrypted file",
	Long: `pwvault stores named credentials (URL, user, password, notes) in one
container file encrypted with a master password.

Containers written by older releases are read transparently and upgraded
to the current format on the next save. The previous file is copied to a
<name>_Backup folder next to the container before every overwrite.

The master password is taken from PWVAULT_PASSWORD, then the OS keyring,
then an interactive prompt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		HandleError(err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "Container file (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Configuration file (default $PWVAULT_CONFIG or user config dir)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")
}
