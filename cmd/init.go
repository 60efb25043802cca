package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty container",
	Long: `Creates a new, empty container at the configured path (or --file).
The master password is read twice and must meet the configured minimum
length. An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	secret, err := s.newMasterPassword()
	if err != nil {
		return err
	}

	if err := secret.Use(func(password []byte) error {
		return s.svc.CreateContainer(s.path, password)
	}); err != nil {
		return err
	}

	if s.catalog != nil {
		if _, err := s.catalog.GetOrCreateContainerID(s.path); err != nil {
			s.logger.Warn().Err(err).Msg("failed to register container")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", s.path)
	return nil
}
