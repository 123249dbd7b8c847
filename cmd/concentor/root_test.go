package main

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/concentor/internal/config"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	_, err := rootCmd.ExecuteC()
	return err
}

func TestStartupRejectsBadLogLevel(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.env")

	err := run(t, "play", "--env-file", missing, "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestStartupRejectsUnreadableEnvFile(t *testing.T) {
	err := run(t, "play", "--env-file", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read env file")
}

func TestRoundOptionsFollowSeed(t *testing.T) {
	assert.Empty(t, roundOptions(config.Config{}))
	assert.Len(t, roundOptions(config.Config{Seed: 42}), 1)
}
