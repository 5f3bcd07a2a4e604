package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"b.hcl", "a.hcl", "nested/c.hcl", "nested/ignored.json"} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
	}, files)
}

func TestFindFilesByExtension_Errors(t *testing.T) {
	_, err := FindFilesByExtension(t.TempDir(), "")
	require.Error(t, err)

	_, err = FindFilesByExtension(filepath.Join(t.TempDir(), "missing"), ".hcl")
	require.Error(t, err)
}
