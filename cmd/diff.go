package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/pwvault/internal/core"
	"github.com/illarion/pwvault/internal/credential"
	"github.com/illarion/pwvault/internal/vault"
)

var diffCmd = &cobra.Command{
	Use:   "diff <other-container>",
	Short: "Compare entries with another container",
	Long: `Compares the entries of the container with another container, for
example a backup snapshot. Both must open with the same master password.
Passwords are reported as changed, never printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	oc, err := s.open(cmd.Context())
	if err != nil {
		return err
	}

	// the other file is read without catalog bookkeeping
	reader := core.NewService(
		core.WithCodec(vault.NewCodec(codecOptions...)),
		core.WithBackup(nil),
		core.WithLogger(s.logger),
	)

	var other credential.Collection
	if err := oc.secret.Use(func(password []byte) error {
		var readErr error
		other, _, readErr = reader.Read(core.AccessRequest{Path: args[0], Password: password})
		return readErr
	}); err != nil {
		return err
	}

	changes := core.CompareCollections(other, oc.entries)
	if len(changes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No differences")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "--- %s\n+++ %s\n", args[0], s.path)
	fmt.Fprint(cmd.OutOrStdout(), core.FormatChanges(changes))
	return nil
}
