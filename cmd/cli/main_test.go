package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600), "failed to set up test file")
	return path
}

func TestRun_ConfigError(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
		registry "player" {
			variable "Score" {
		// Missing closing brace here
	`)
	err := run(context.Background(), &bytes.Buffer{}, []string{"-state", t.TempDir(), path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_SetThenDump(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
		registry "player" {
			variable "Score" {
				type    = int
				default = 1
			}
		}
	`)
	state := t.TempDir()

	require.NoError(t, run(context.Background(), &bytes.Buffer{}, []string{"-state", state, "-set", "Score=41", path}))
	assert.FileExists(t, filepath.Join(state, "player.json"))

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"dump", "-state", state, "-log-level", "error", path}))
	assert.Contains(t, out.String(), "41")
}
