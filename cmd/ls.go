package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/illarion/pwvault/internal/credential"
)

var showReveal bool

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List entry names",
	Args:    cobra.NoArgs,
	RunE:    runLs,
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print one entry",
	Long: `Prints the fields of one entry. The password is masked unless
--reveal is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showReveal, "reveal", false, "Print the password in clear text")
}

func runLs(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	oc, err := s.open(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(oc.entries) == 0 {
		fmt.Fprintln(out, "No entries")
		return nil
	}

	names := oc.entries.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	oc, err := s.open(cmd.Context())
	if err != nil {
		return err
	}

	entry := oc.entries.Find(args[0])
	if entry == nil {
		return fmt.Errorf("no entry named %q", args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:     %s\n", entry.Name)
	fmt.Fprintf(out, "URL:      %s\n", credential.Value(entry.URL))
	fmt.Fprintf(out, "User:     %s\n", credential.Value(entry.User))
	fmt.Fprintf(out, "Password: %s\n", maskPassword(entry.Password, showReveal))
	if notes := credential.Value(entry.Notes); notes != "" {
		fmt.Fprintln(out, "Notes:")
		for _, line := range strings.Split(strings.TrimRight(notes, "\n"), "\n") {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	return nil
}

func maskPassword(p *string, reveal bool) string {
	switch {
	case p == nil || *p == "":
		return ""
	case reveal:
		return *p
	default:
		return "********"
	}
}
