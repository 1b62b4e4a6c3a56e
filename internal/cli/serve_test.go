package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tabard/internal/config"
)

func TestApplyServeFlags(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	opts := &ServeOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{Use: "serve"}
	registerServeFlags(cmd, opts)

	require.NoError(t, cmd.ParseFlags([]string{
		"--db", "/data/flag.db",
		"--backup=false",
		"--listen", ":9090",
	}))

	cfg := config.Config{
		DBPath:          "/data/env.db",
		DBDriver:        "sqlite3",
		DBName:          "main",
		BackupEnabled:   true,
		BackupURL:       "https://hooks.example.com/exec",
		RawQueryEnabled: true,
		ListenAddr:      ":8080",
	}
	applyServeFlags(&cfg, opts, cmd)

	// Explicitly-set flags win, including --backup=false over an
	// environment true.
	assert.Equal(t, "/data/flag.db", cfg.DBPath)
	assert.False(t, cfg.BackupEnabled)
	assert.Equal(t, ":9090", cfg.ListenAddr)

	// Unset flags leave the environment values alone.
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "main", cfg.DBName)
	assert.True(t, cfg.RawQueryEnabled)
	assert.Equal(t, "https://hooks.example.com/exec", cfg.BackupURL)
}

func TestServeMissingDatabasePath(t *testing.T) {
	t.Setenv("TABARD_DB_PATH", "")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewServeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestServeBackupRequiresURL(t *testing.T) {
	t.Setenv("TABARD_DB_PATH", "")
	t.Setenv("TABARD_BACKUP_URL", "")
	dbPath := filepath.Join(t.TempDir(), "gateway.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewServeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--backup"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook URL")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestServeBadTablesFile(t *testing.T) {
	t.Setenv("TABARD_DB_PATH", "")
	dbPath := filepath.Join(t.TempDir(), "gateway.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewServeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--tables", "/nonexistent/tables.cue"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load table map")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestServeFlagOverridesEnvDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, "env.db")
	flagPath := filepath.Join(tmpDir, "flag.db")
	t.Setenv("TABARD_DB_PATH", envPath)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewServeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", flagPath, "--listen", "127.0.0.1:0"})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- cmd.ExecuteContext(ctx)
	}()

	select {
	case err := <-errChan:
		require.NoError(t, err, "serve should shut down cleanly on context cancellation")
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not respect context timeout")
	}

	// The flag path was opened (file created); the env path was never
	// touched.
	_, err := os.Stat(flagPath)
	assert.NoError(t, err, "flag database should be created")
	_, err = os.Stat(envPath)
	assert.True(t, os.IsNotExist(err), "env database should not be created")

	output := buf.String()
	assert.Contains(t, output, "Gateway listening on 127.0.0.1:0")
	assert.Contains(t, output, "Press Ctrl-C to stop.")
}

func TestServeEnvironmentOnly(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "gateway.db")
	t.Setenv("TABARD_DB_PATH", dbPath)
	t.Setenv("TABARD_LISTEN_ADDR", "127.0.0.1:0")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewServeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- cmd.ExecuteContext(ctx)
	}()

	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not respect context timeout")
	}

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "database should be created")
	assert.Contains(t, buf.String(), "Gateway listening on 127.0.0.1:0")
}

func TestServeHelpText(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewServeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Start the HTTP gateway")
	assert.Contains(t, output, "--db")
	assert.Contains(t, output, "--backup-url")
	assert.Contains(t, output, "--tables")
}
