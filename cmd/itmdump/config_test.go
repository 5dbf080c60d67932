package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newTestCommand() *cobra.Command {
	cmd := newDecodeCommand()
	cmd.PersistentFlags().String("config", "", "")
	return cmd
}

func TestLoadConfigDefaultsFromFlags(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("naive", "true"))
	require.NoError(t, cmd.Flags().Set("json", "true"))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	require.True(t, cfg.Naive)
	require.True(t, cfg.JSON)
	require.False(t, cfg.OnlyGTS)
}

func TestLoadConfigYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("naive: true\nstats: true\n"), 0o644))

	cmd := newTestCommand()
	require.NoError(t, cmd.PersistentFlags().Set("config", path))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	require.True(t, cfg.Naive)
	require.True(t, cfg.Stats)
}

func TestLoadConfigFlagOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("naive: false\n"), 0o644))

	cmd := newTestCommand()
	require.NoError(t, cmd.PersistentFlags().Set("config", path))
	require.NoError(t, cmd.Flags().Set("naive", "true"))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	require.True(t, cfg.Naive)
}
