package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/illarion/pwvault/internal/core"
	"github.com/illarion/pwvault/internal/crypto"
	"github.com/illarion/pwvault/internal/vault"
)

func TestMain(m *testing.M) {
	codecOptions = []vault.Option{vault.WithIterations(1000)}
	keyring.MockInit()
	os.Exit(m.Run())
}

type env struct {
	dir       string
	container string
}

// setup writes a config that keeps every file inside a temp dir
func setup(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{dir: dir, container: filepath.Join(dir, "passwords.vault")}

	cfg := fmt.Sprintf("container: %s\ncatalog: %s\nlog_level: disabled\n",
		e.container, filepath.Join(dir, "catalog.db"))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0600))

	t.Setenv("PWVAULT_CONFIG", cfgPath)
	t.Setenv(core.EnvPassword, "master password")
	return e
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "pwvault %v", args)
	return out
}

func TestInitListAddShowRemove(t *testing.T) {
	setup(t)

	assert.Contains(t, mustRun(t, "init"), "Created")
	assert.Contains(t, mustRun(t, "ls"), "No entries")

	out := mustRun(t, "add", "mail", "--no-password", "--url", "https://mail.example.com", "--user", "joe", "--notes", "two\nlines")
	assert.Contains(t, out, "Added mail")

	assert.Equal(t, "mail\n", mustRun(t, "ls"))

	out = mustRun(t, "show", "mail")
	assert.Contains(t, out, "https://mail.example.com")
	assert.Contains(t, out, "User:     joe")
	assert.Contains(t, out, "  lines")

	// update keeps fields that are not given
	assert.Contains(t, mustRun(t, "add", "mail", "--no-password", "--user", "jdoe"), "Updated mail")
	out = mustRun(t, "show", "mail")
	assert.Contains(t, out, "https://mail.example.com")
	assert.Contains(t, out, "User:     jdoe")

	_, err := run(t, "show", "missing")
	assert.Error(t, err)

	assert.Contains(t, mustRun(t, "rm", "mail"), "Removed mail")
	assert.Contains(t, mustRun(t, "ls"), "No entries")

	_, err = run(t, "rm", "mail")
	assert.Error(t, err)
}

func TestInitTwiceFails(t *testing.T) {
	setup(t)
	mustRun(t, "init")

	_, err := run(t, "init")
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func TestInitShortPassword(t *testing.T) {
	e := setup(t)
	t.Setenv(core.EnvPassword, "short")

	_, err := run(t, "init")
	assert.ErrorIs(t, err, core.ErrPasswordTooShort)
	_, statErr := os.Stat(e.container)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWrongPassword(t *testing.T) {
	setup(t)
	mustRun(t, "init")

	t.Setenv(core.EnvPassword, "not the master password")
	_, err := run(t, "ls")
	assert.ErrorIs(t, err, vault.ErrCrypto)
}

func TestMissingContainer(t *testing.T) {
	setup(t)

	_, err := run(t, "ls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pwvault init")

	assert.Contains(t, mustRun(t, "status"), "No container")
}

func TestFileFlagOverridesConfig(t *testing.T) {
	e := setup(t)
	other := filepath.Join(e.dir, "other.vault")

	mustRun(t, "init", "--file", other)
	_, err := os.Stat(other)
	require.NoError(t, err)
	_, err = os.Stat(e.container)
	assert.True(t, os.IsNotExist(err))
}

func TestBackupsAndStatus(t *testing.T) {
	setup(t)
	mustRun(t, "init")
	assert.Contains(t, mustRun(t, "backups"), "No backups")

	mustRun(t, "add", "one", "--no-password")

	out := mustRun(t, "backups")
	assert.Contains(t, out, "passwords_Backup")

	out = mustRun(t, "status")
	assert.Contains(t, out, "current (v2)")
	assert.Contains(t, out, "Backups:   1")
	assert.Contains(t, out, "last saved")
}

func TestLegacyContainerUpgrade(t *testing.T) {
	e := setup(t)

	legacySalt := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16}
	legacyIV := []byte{0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	key := crypto.DeriveKey([]byte("master password"), legacySalt, 16)
	ct, err := crypto.EncryptCBC([]byte(`[{"Name":"Example","Url":"http://example.com","User":"JoeDoe","Password":"test1234!","Notes":null}]`), key, legacyIV)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(e.container, ct, 0600))

	assert.Contains(t, mustRun(t, "status"), "legacy (v1)")

	out := mustRun(t, "show", "Example", "--reveal")
	assert.Contains(t, out, "JoeDoe")
	assert.Contains(t, out, "test1234!")

	mustRun(t, "add", "Second", "--no-password")

	out = mustRun(t, "status")
	assert.Contains(t, out, "current (v2)")
	assert.Contains(t, out, "upgraded from legacy format")

	// the legacy bytes are kept as a backup
	out = mustRun(t, "ls")
	assert.Equal(t, "Example\nSecond\n", out)
	assert.Contains(t, mustRun(t, "backups"), "passwords_Backup")
}

func TestDiff(t *testing.T) {
	e := setup(t)
	mustRun(t, "init")
	mustRun(t, "add", "kept", "--no-password", "--notes", "a\nb")

	snapshot := filepath.Join(e.dir, "copy.vault")
	data, err := os.ReadFile(e.container)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(snapshot, data, 0600))

	assert.Contains(t, mustRun(t, "diff", snapshot), "No differences")

	mustRun(t, "add", "fresh", "--no-password")
	mustRun(t, "add", "kept", "--no-password", "--notes", "a\nc")

	out := mustRun(t, "diff", snapshot)
	assert.Contains(t, out, "+ fresh")
	assert.Contains(t, out, "~ kept")
	assert.Contains(t, out, "-b")
	assert.Contains(t, out, "+c")
}

func TestPasswd(t *testing.T) {
	e := setup(t)
	mustRun(t, "init")
	mustRun(t, "add", "mail", "--no-password")
	mustRun(t, "keyring", "save")

	// wrong current password
	t.Setenv(core.EnvPassword, "another master password")
	t.Setenv(core.EnvNewPassword, "new master password")
	_, err := run(t, "passwd")
	assert.ErrorIs(t, err, vault.ErrCrypto)

	// the new password must differ from the current one
	t.Setenv(core.EnvPassword, "master password")
	t.Setenv(core.EnvNewPassword, "master password")
	_, err = run(t, "passwd")
	assert.ErrorIs(t, err, core.ErrPasswordUnchanged)

	t.Setenv(core.EnvNewPassword, "short")
	_, err = run(t, "passwd")
	assert.ErrorIs(t, err, core.ErrPasswordTooShort)

	t.Setenv(core.EnvNewPassword, "new master password")
	out := mustRun(t, "passwd")
	assert.Contains(t, out, "Password changed")
	assert.Contains(t, out, "Old password removed from keyring")

	svc := core.NewService(core.WithCodec(vault.NewCodec(codecOptions...)), core.WithBackup(nil))
	_, _, err = svc.OpenContainer(e.container, []byte("master password"))
	assert.ErrorIs(t, err, vault.ErrCrypto, "the old password must stop working")

	entries, _, err := svc.OpenContainer(e.container, []byte("new master password"))
	require.NoError(t, err)
	assert.Equal(t, []string{"mail"}, entries.Names())

	t.Setenv(core.EnvPassword, "new master password")
	assert.Contains(t, mustRun(t, "ls"), "mail")
}

func TestKeyring(t *testing.T) {
	setup(t)
	mustRun(t, "init")

	assert.Contains(t, mustRun(t, "keyring", "status"), "not stored")
	assert.Contains(t, mustRun(t, "keyring", "save"), "saved")
	assert.Contains(t, mustRun(t, "keyring", "status"), "stored in keyring")

	// without the environment the keyring supplies the password
	t.Setenv(core.EnvPassword, "")
	assert.Contains(t, mustRun(t, "ls"), "No entries")

	assert.Contains(t, mustRun(t, "keyring", "delete"), "removed")
	assert.Contains(t, mustRun(t, "keyring", "delete"), "No password stored")
}
