package app

import (
	"context"
	"fmt"
)

// Run resets and assigns as configured, then either saves once or, with a
// listen address, serves the broadcast hub until ctx is cancelled and saves
// on the way out.
func (a *App) Run(ctx context.Context) error {
	a.logger.Debug("App.Run method started.")

	if a.config.Reset {
		a.ResetAll()
		a.logger.Info("Registries reset to defaults.")
	}
	if err := a.ApplySets(a.config.Sets); err != nil {
		return err
	}

	if a.config.ListenAddr != "" {
		if err := a.startServer(); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		a.logger.Info("🚀 Serving registries until interrupted.", "registries", len(a.registries))
		<-ctx.Done()
		a.stopServer()
	}

	if err := a.Save(); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}
