package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"backfill"},
		{"sweep-audit"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRootCmd_MissingConfig(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "migrate", "version"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestMigrateDown_StepsFlag(t *testing.T) {
	root := newRootCmd()
	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)

	steps, err := down.Flags().GetInt("steps")
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	path, err := down.InheritedFlags().GetString("path")
	require.NoError(t, err)
	assert.Equal(t, "./migrations", path)
}
