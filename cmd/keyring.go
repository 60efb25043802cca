package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/pwvault/internal/core"
	"github.com/illarion/pwvault/internal/crypto"
	"github.com/illarion/pwvault/internal/keyring"
)

var errNoCatalog = errors.New("catalog unavailable, keyring entries are keyed by catalog ID")

var keyringCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Manage the master password cached in the OS keyring",
}

var keyringSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Verify the master password and store it in the keyring",
	Args:  cobra.NoArgs,
	RunE:  runKeyringSave,
}

var keyringDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the master password from the keyring",
	Args:  cobra.NoArgs,
	RunE:  runKeyringDelete,
}

var keyringStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the master password is in the keyring",
	Args:  cobra.NoArgs,
	RunE:  runKeyringStatus,
}

func init() {
	rootCmd.AddCommand(keyringCmd)
	keyringCmd.AddCommand(keyringSaveCmd, keyringDeleteCmd, keyringStatusCmd)
}

// runKeyringSave verifies the password before caching it
func runKeyringSave(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if s.catalog == nil {
		return errNoCatalog
	}

	password := core.GetPasswordFromEnv()
	if password == nil {
		password, err = core.ReadPassword("Master password: ")
		if err != nil {
			return err
		}
	}
	defer crypto.ClearBytes(password)

	// Verify password is correct
	if _, _, err := s.svc.Read(core.AccessRequest{Path: s.path, Password: password}); err != nil {
		return err
	}

	id, err := s.catalog.GetOrCreateContainerID(s.path)
	if err != nil {
		return err
	}

	if err := keyring.SavePassword(id, password); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Password saved to keyring")
	return nil
}

func runKeyringDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	id, ok := s.containerID()
	if !ok || !keyring.HasPassword(id) {
		fmt.Fprintln(cmd.OutOrStdout(), "No password stored in keyring")
		return nil
	}

	if err := keyring.DeletePassword(id); err != nil {
		return fmt.Errorf("failed to remove from keyring: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Password removed from keyring")
	return nil
}

func runKeyringStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	id, ok := s.containerID()
	if ok && keyring.HasPassword(id) {
		fmt.Fprintln(cmd.OutOrStdout(), "Password: stored in keyring")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Password: not stored")
	}
	if !s.cfg.Keyring.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Keyring lookup is disabled in the configuration")
	}
	return nil
}
