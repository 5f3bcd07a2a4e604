// Package testutil holds shared harnesses for end-to-end tests that build a
// full App from declaration files.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/scriptvars/internal/app"
	"github.com/vk/scriptvars/internal/ctxlog"
	"github.com/vk/scriptvars/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test setup.
type HarnessResult struct {
	LogOutput *SafeBuffer
	Err       error
	App       *app.App
	Config    *app.Config
}

// WriteFiles writes files, keyed by relative path, under a fresh directory
// and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// NewApp writes the declaration files and builds an App over them. configure
// may adjust the config before the App is built; StateDir defaults to a
// temporary directory. A build failure is reported in Err, not fatally.
func NewApp(t *testing.T, files map[string]string, configure func(*app.Config)) *HarnessResult {
	t.Helper()

	cfg := &app.Config{
		Command:     app.CommandRun,
		ConfigPaths: []string{WriteFiles(t, files)},
		StateDir:    t.TempDir(),
		LogLevel:    "debug",
		LogFormat:   "text",
		Namespace:   "/",
	}
	if configure != nil {
		configure(cfg)
	}

	logs := &SafeBuffer{}
	a, err := app.NewApp(context.Background(), logs, cfg, hcl.NewLoader())
	t.Cleanup(func() {
		if a != nil {
			_ = a.Close()
		}
		if os.Getenv("SCRIPTVARS_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	if err != nil {
		return &HarnessResult{LogOutput: logs, Err: fmt.Errorf("application startup failed | %w", err), Config: cfg}
	}
	return &HarnessResult{LogOutput: logs, App: a, Config: cfg}
}

// FreeAddr returns a loopback address with a port that was free a moment
// ago.
func FreeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// Serve runs the App until the test ends or the returned stop function is
// called, and waits for /health to answer. stop returns Run's error.
func Serve(t *testing.T, res *HarnessResult) (stop func() error) {
	t.Helper()
	require.NoError(t, res.Err)
	require.NotEmpty(t, res.Config.ListenAddr, "Serve needs a listen address")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- res.App.Run(ctx) }()

	healthURL := fmt.Sprintf("http://%s/health", res.Config.ListenAddr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(healthURL)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond, "server never became healthy")

	var once sync.Once
	var runErr error
	stop = func() error {
		once.Do(func() {
			cancel()
			select {
			case runErr = <-done:
			case <-time.After(10 * time.Second):
				runErr = fmt.Errorf("Run did not return after cancellation")
			}
		})
		return runErr
	}
	t.Cleanup(func() { _ = stop() })
	return stop
}

// LoggerContext returns a context carrying a logger that writes to logs.
func LoggerContext(logs io.Writer) context.Context {
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}
