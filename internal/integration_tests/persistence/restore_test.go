package integration_tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scriptvars/internal/app"
	"github.com/vk/scriptvars/internal/geom"
	"github.com/vk/scriptvars/internal/registry"
	"github.com/vk/scriptvars/internal/snapshot"
	"github.com/vk/scriptvars/internal/testutil"
	"github.com/vk/scriptvars/internal/variable"
)

var declarations = map[string]string{
	"decl/player.hcl": `
		registry "player" {
			variable "Health" {
				type    = float
				default = 100
			}
			variable "Tint" {
				type    = color
				default = { r = 1, g = 0, b = 0, a = 1 }
			}
			variable "Inventory" {
				type    = list(string)
				default = ["sword"]
			}
		}
	`,
}

// TestRestore_AcrossRuns saves one run's assignments and checks that a
// second App over the same state directory starts from them.
func TestRestore_AcrossRuns(t *testing.T) {
	t.Parallel()

	first := testutil.NewApp(t, declarations, func(c *app.Config) {
		c.Sets = []string{"Health=42.5", `Inventory=["sword","shield"]`}
	})
	require.NoError(t, first.Err)
	require.NoError(t, first.App.Run(t.Context()))

	doc, err := snapshot.ReadFile(first.App.StatePath("player"))
	require.NoError(t, err)
	want := []snapshot.Record{
		{Name: "Health", Type: "FloatVariable", Value: "42.5"},
		{Name: "Tint", Type: "ColorVariable", Value: `{"a":1,"b":0,"g":0,"r":1}`},
		{Name: "Inventory", Type: "StringListVariable", Value: `["sword","shield"]`},
	}
	if diff := cmp.Diff(want, doc.Variables); diff != "" {
		t.Errorf("saved records mismatch (-want +got):\n%s", diff)
	}

	second := testutil.NewApp(t, declarations, func(c *app.Config) {
		c.StateDir = first.Config.StateDir
	})
	require.NoError(t, second.Err)
	player, ok := second.App.Registry("player")
	require.True(t, ok)

	health, _ := registry.Lookup[*variable.Float](player, "Health")
	assert.Equal(t, 42.5, health.Get())
	tint, _ := registry.Lookup[*variable.Color](player, "Tint")
	assert.Equal(t, geom.Color{R: 1, A: 1}, tint.Get())
	inv, _ := registry.Lookup[*variable.StringList](player, "Inventory")
	assert.Equal(t, []string{"sword", "shield"}, inv.Get())
}

// TestRestore_DamagedStateFile keeps defaults when the state file is not a
// document, and keeps the good records of a partially damaged one.
func TestRestore_DamagedStateFile(t *testing.T) {
	t.Parallel()

	t.Run("unparseable", func(t *testing.T) {
		t.Parallel()
		stateDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(stateDir, "player.json"), []byte("{not json"), 0o644))

		res := testutil.NewApp(t, declarations, func(c *app.Config) { c.StateDir = stateDir })
		require.NoError(t, res.Err)
		assert.Contains(t, res.LogOutput.String(), "Failed to read saved state.")

		player, _ := res.App.Registry("player")
		health, _ := registry.Lookup[*variable.Float](player, "Health")
		assert.Equal(t, 100.0, health.Get())
	})

	t.Run("one bad record", func(t *testing.T) {
		t.Parallel()
		stateDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(stateDir, "player.json"), []byte(`{
			"containerName": "player",
			"saveTime": "2024-05-01 10:00:00",
			"variables": [
				{"name": "Health", "type": "FloatVariable", "value": "lots"},
				{"name": "Tint", "type": "ColorVariable", "value": "{\"r\":0,\"g\":0,\"b\":1,\"a\":1}"},
				{"name": "Retired", "type": "IntVariable", "value": "3"}
			]
		}`), 0o644))

		res := testutil.NewApp(t, declarations, func(c *app.Config) { c.StateDir = stateDir })
		require.NoError(t, res.Err)

		player, _ := res.App.Registry("player")
		health, _ := registry.Lookup[*variable.Float](player, "Health")
		assert.Equal(t, 100.0, health.Get())
		tint, _ := registry.Lookup[*variable.Color](player, "Tint")
		assert.Equal(t, geom.Color{B: 1, A: 1}, tint.Get())
	})
}

func TestStartup_BadDeclaration(t *testing.T) {
	t.Parallel()

	res := testutil.NewApp(t, map[string]string{
		"decl/bad.hcl": `
			registry "player" {
				variable "Spawn" {
					type    = vector3
					default = "origin"
				}
			}
		`,
	}, nil)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "application startup failed")
	assert.Contains(t, res.Err.Error(), "is not a valid vector3")
}
