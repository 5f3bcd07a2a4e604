package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/vk/scriptvars/internal/broadcast"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// handler routes /health and the broadcast hub.
func (a *App) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/socket.io/", a.hub.Handler())
	return mux
}

// startServer binds the listen address and serves the hub in the
// background. Bind errors are returned; later serve errors are logged.
func (a *App) startServer() error {
	a.logger.Debug("Configuring server.", "address", a.config.ListenAddr)
	a.hub = broadcast.NewHub(a.logger, a.registries...)

	ln, err := net.Listen("tcp", a.config.ListenAddr)
	if err != nil {
		a.hub.Close()
		a.hub = nil
		return fmt.Errorf("listen on %s: %w", a.config.ListenAddr, err)
	}

	a.httpServer = &http.Server{
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.logger.Info("🩺 Server starting", "health", fmt.Sprintf("http://%s/health", ln.Addr()), "socket.io", fmt.Sprintf("http://%s/socket.io/", ln.Addr()))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

// stopServer closes the hub first so no client write lands after the final
// save, then shuts the HTTP server down.
func (a *App) stopServer() {
	if a.hub != nil {
		a.hub.Close()
		a.hub = nil
	}
	if a.httpServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown failed", "error", err)
	}
	a.httpServer = nil
	a.logger.Debug("Server shut down gracefully.")
}
