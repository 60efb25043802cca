package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/pwvault/internal/core"
	"github.com/illarion/pwvault/internal/credential"
	"github.com/illarion/pwvault/internal/crypto"
)

var (
	addURL        string
	addUser       string
	addNotes      string
	addNoPassword bool
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update an entry",
	Long: `Adds an entry, or updates it when the name exists. Only fields given
as flags change on update. The entry password is prompted for unless
--no-password is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var rmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(rmCmd)
	addCmd.Flags().StringVar(&addURL, "url", "", "Website or service URL")
	addCmd.Flags().StringVar(&addUser, "user", "", "User name")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Free-form notes")
	addCmd.Flags().BoolVar(&addNoPassword, "no-password", false, "Do not prompt for the entry password")
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	oc, err := s.open(cmd.Context())
	if err != nil {
		return err
	}

	entry := credential.Entry{Name: args[0]}
	if existing := oc.entries.Find(args[0]); existing != nil {
		entry = *existing
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		entry.URL = credential.String(addURL)
	}
	if flags.Changed("user") {
		entry.User = credential.String(addUser)
	}
	if flags.Changed("notes") {
		entry.Notes = credential.String(addNotes)
	}
	if !addNoPassword {
		password, err := core.ReadPassword(fmt.Sprintf("Password for %s: ", args[0]))
		if err != nil {
			return err
		}
		entry.Password = credential.String(string(password))
		crypto.ClearBytes(password)
	}

	if err := entry.Validate(); err != nil {
		return err
	}
	updated := oc.entries.Upsert(entry)

	if err := s.save(oc); err != nil {
		return err
	}

	if updated {
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", entry.Name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", entry.Name)
	}
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	oc, err := s.open(cmd.Context())
	if err != nil {
		return err
	}

	if !oc.entries.Remove(args[0]) {
		return fmt.Errorf("no entry named %q", args[0])
	}
	if err := s.save(oc); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}
