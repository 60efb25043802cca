package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Exposure describes how a container and its backups relate to an
// enclosing git working tree
type Exposure struct {
	IsRepo           bool
	ContainerTracked bool
	ContainerIgnored bool
	TrackedBackups   []string // snapshot files committed to git (bad)
	BackupsIgnored   bool     // backup folder in .gitignore (good)
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// CheckExposure inspects the git status of the container at path, its
// backup folder and the given snapshot files
func CheckExposure(path, backupFolder string, snapshots []string) (*Exposure, error) {
	workDir := filepath.Dir(path)
	status := &Exposure{}

	if !IsGitRepo(workDir) {
		return status, nil
	}
	status.IsRepo = true

	name := filepath.Base(path)
	status.ContainerTracked = IsTracked(workDir, name)
	status.ContainerIgnored = IsIgnored(workDir, name)

	folder, err := filepath.Rel(workDir, backupFolder)
	if err != nil {
		return nil, fmt.Errorf("backup folder outside container directory: %w", err)
	}
	status.BackupsIgnored = IsIgnored(workDir, folder)

	for _, snap := range snapshots {
		rel, err := filepath.Rel(workDir, snap)
		if err != nil {
			continue
		}
		if IsTracked(workDir, rel) {
			status.TrackedBackups = append(status.TrackedBackups, rel)
		}
	}

	return status, nil
}

// FormatExposure formats git exposure for display
func FormatExposure(status *Exposure, backupFolder string) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit:\n")

	switch {
	case status.ContainerTracked:
		result.WriteString("   warning: container is tracked by git, every committed version can be attacked offline\n")
	case status.ContainerIgnored:
		result.WriteString("   ok: container is in .gitignore\n")
	default:
		result.WriteString("   warning: container not in .gitignore\n")
	}

	if len(status.TrackedBackups) > 0 {
		result.WriteString(fmt.Sprintf("   error: %d backup file(s) tracked by git:\n", len(status.TrackedBackups)))
		for _, file := range status.TrackedBackups {
			result.WriteString(fmt.Sprintf("      - %s (run: git rm --cached %s)\n", file, file))
		}
	}

	if status.BackupsIgnored {
		result.WriteString("   ok: backup folder is in .gitignore\n")
	} else {
		result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore\n", filepath.Base(backupFolder)+"/"))
	}

	return result.String()
}
