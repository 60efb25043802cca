package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/pwvault/internal/core"
	"github.com/illarion/pwvault/internal/keyring"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the master password",
	Long: `Re-encrypts the container under a new master password. A stale copy
in the OS keyring is removed.

The current password comes from PWVAULT_PASSWORD, the keyring or a prompt.
The new password comes from PWVAULT_NEW_PASSWORD or a confirmed prompt.`,
	Args: cobra.NoArgs,
	RunE: runPasswd,
}

func init() {
	rootCmd.AddCommand(passwdCmd)
}

func runPasswd(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.requireContainer(); err != nil {
		return err
	}

	current, source, err := s.masterPassword("Current password: ")
	if err != nil {
		return err
	}

	replacement, err := s.replacementPassword()
	if err != nil {
		return err
	}

	err = current.Use(func(oldPassword []byte) error {
		return replacement.Use(func(newPassword []byte) error {
			return s.svc.ChangePassword(s.path, oldPassword, newPassword)
		})
	})
	if err != nil {
		return explainPasswordError(source, err)
	}

	if id, ok := s.containerID(); ok && s.cfg.Keyring.Enabled && keyring.HasPassword(id) {
		if err := keyring.DeletePassword(id); err != nil {
			s.logger.Warn().Err(err).Msg("failed to remove old password from keyring")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Old password removed from keyring")
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
	if core.GetPasswordFromEnv() != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Update %s to the new password\n", core.EnvPassword)
	}
	return nil
}
