package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/scriptvars/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteDeclarations writes hclSource to a fresh directory and returns the
// directory.
func WriteDeclarations(t *testing.T, hclSource string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(hclSource), 0o600))
	return dir
}

// SetupAppTest creates a new app instance for system testing. Declarations
// are read from cfg.ConfigPaths with the HCL loader.
func SetupAppTest(t *testing.T, cfg *Config) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	cfg.LogLevel = "debug"
	if cfg.StateDir == "" {
		cfg.StateDir = t.TempDir()
	}
	testApp, err := NewApp(context.Background(), logBuffer, cfg, hcl.NewLoader())
	require.NoError(t, err, "log output:\n%s", logBuffer.String())

	t.Cleanup(func() {
		_ = testApp.Close()
		if os.Getenv("SCRIPTVARS_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
