package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateCommand_CreatesDatabase(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "data", "punchclock.db")
	t.Setenv("PUNCHCLOCK_DB_DRIVER", "sqlite")
	t.Setenv("PUNCHCLOCK_DB_PATH", path)

	rootCmd.SetArgs([]string{"migrate", "--log-level", "error"})
	require.NoError(t, rootCmd.Execute())

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestServeCommand_RejectsBadDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PUNCHCLOCK_DB_DRIVER", "postgres")

	rootCmd.SetArgs([]string{"serve"})
	require.Error(t, rootCmd.Execute())
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
