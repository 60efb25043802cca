package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/illarion/pwvault/internal/backup"
	"github.com/illarion/pwvault/internal/git"
	"github.com/illarion/pwvault/internal/keyring"
	"github.com/illarion/pwvault/internal/vault"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show container state without the password",
	Long: `Shows the container format, size and modification time, the backup
count, what the catalog remembers and whether git exposes the container.
No password is needed.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "No container at %s\n", s.path)
			fmt.Fprintln(out, "Run 'pwvault init' to create one")
			return nil
		}
		return err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Container: %s\n", s.path)
	fmt.Fprintf(out, "Format:    %s\n", describeFormat(vault.Probe(data)))
	fmt.Fprintf(out, "Size:      %d bytes\n", info.Size())
	fmt.Fprintf(out, "Modified:  %s\n", info.ModTime().Format(time.RFC3339))

	snapshots, err := s.backups.List(s.path)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list backups")
	}
	fmt.Fprintf(out, "Backups:   %d in %s\n", len(snapshots), backup.Folder(s.path))

	if s.catalog != nil {
		if rec, err := s.catalog.Container(s.path); err == nil {
			fmt.Fprintf(out, "\nCatalog:\n")
			fmt.Fprintf(out, "   id: %s\n", rec.ID)
			if !rec.LastOpened.IsZero() {
				fmt.Fprintf(out, "   last opened: %s\n", rec.LastOpened.Format(time.RFC3339))
			}
			if !rec.LastSaved.IsZero() {
				fmt.Fprintf(out, "   last saved: %s\n", rec.LastSaved.Format(time.RFC3339))
			}
			if !rec.Migrated.IsZero() {
				fmt.Fprintf(out, "   upgraded from legacy format: %s\n", rec.Migrated.Format(time.RFC3339))
			}
			if s.cfg.Keyring.Enabled && keyring.HasPassword(rec.ID) {
				fmt.Fprintln(out, "   password cached in keyring")
			}
		}
	}

	paths := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		paths = append(paths, snap.Path)
	}
	exposure, err := git.CheckExposure(s.path, backup.Folder(s.path), paths)
	if err != nil {
		s.logger.Debug().Err(err).Msg("git check skipped")
		return nil
	}
	fmt.Fprint(out, git.FormatExposure(exposure, backup.Folder(s.path)))
	return nil
}

func describeFormat(probe vault.Result) string {
	switch probe.Kind {
	case vault.KindV2:
		return "current (v2)"
	case vault.KindV1:
		return "legacy (v1), upgraded on next save"
	default:
		return fmt.Sprintf("unrecognized (%v)", probe.Reason)
	}
}
