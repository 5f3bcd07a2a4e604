package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/scriptvars/internal/app"
	"github.com/vk/scriptvars/internal/cli"
	"github.com/vk/scriptvars/internal/hcl"
)

// main is the entrypoint for the scriptvars application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) (err error) {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// A panic during startup is a programmer error; report it as a regular
	// failure instead of a stack dump.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	switch cfg.Command {
	case app.CommandWatch:
		return app.Watch(ctx, outW, cfg)
	case app.CommandRemoteSet:
		return app.RemoteSet(ctx, outW, cfg)
	}

	a, err := app.NewApp(ctx, outW, cfg, hcl.NewLoader())
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Command == app.CommandDump {
		return a.Dump(outW)
	}
	return a.Run(ctx)
}
