package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/illarion/pwvault/internal/backup"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backup snapshots of the container",
	Args:  cobra.NoArgs,
	RunE:  runBackups,
}

func init() {
	rootCmd.AddCommand(backupsCmd)
}

func runBackups(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	snapshots, err := s.backups.List(s.path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(snapshots) == 0 {
		fmt.Fprintf(out, "No backups in %s\n", backup.Folder(s.path))
		return nil
	}

	for _, snap := range snapshots {
		fmt.Fprintf(out, "%s  %8d  %s\n", snap.Time.Format(time.DateTime), snap.Size, snap.Path)
	}
	return nil
}
