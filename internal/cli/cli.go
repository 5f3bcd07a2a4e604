package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/scriptvars/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

var commands = map[string]bool{
	app.CommandRun:       true,
	app.CommandDump:      true,
	app.CommandWatch:     true,
	app.CommandRemoteSet: true,
}

// Parse processes command-line arguments on top of the SCRIPTVARS_*
// environment. It returns a populated Config, a boolean indicating if the
// program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	envCfg, err := app.LoadEnv()
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	command := app.CommandRun
	if len(args) > 0 && commands[args[0]] {
		command = args[0]
		args = args[1:]
	}

	flagSet := flag.NewFlagSet("scriptvars "+command, flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
scriptvars - Named, persistent, observable variables.

Usage:
  scriptvars [command] [options] [CONFIG_PATH...]

Commands:
  run         Apply -set assignments and save (default). With -listen, serve
              the registries over socket.io until interrupted.
  dump        Print every registry with its current values.
  watch       Follow a running hub and print every change.
  remote-set  Send -set assignments and -signal events to a running hub
              and wait for it to apply them.

Arguments:
  CONFIG_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	sets := stringList{}
	signals := stringList{}
	stateFlag := flagSet.String("state", envCfg.StateDir, "Directory for registry state files.")
	registryFlag := flagSet.String("registry", envCfg.Registry, "Only use the named registry.")
	listenFlag := flagSet.String("listen", envCfg.ListenAddr, "Address to serve /health and socket.io on, e.g. ':8080'. Empty disables serving.")
	historyFlag := flagSet.String("history", envCfg.HistoryPath, "SQLite file recording every save. Empty disables history.")
	fromHistoryFlag := flagSet.Bool("from-history", envCfg.FromHistory, "Restore registries from the newest history entry instead of state files.")
	resetFlag := flagSet.Bool("reset", false, "Reset every resettable variable to its default before applying -set.")
	logFormatFlag := flagSet.String("log-format", envCfg.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envCfg.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	urlFlag := flagSet.String("url", envCfg.RemoteURL, "Hub URL for watch and remote-set.")
	namespaceFlag := flagSet.String("namespace", envCfg.Namespace, "Socket.io namespace for watch and remote-set.")
	flagSet.Var(&sets, "set", "Assignment 'name=value' or 'registry.name=value'. Repeatable.")
	flagSet.Var(&signals, "signal", "Event to fire with remote-set, as 'registry.name'. Repeatable.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "command", command)

	paths := envCfg.ConfigPaths
	if flagSet.NArg() > 0 {
		paths = flagSet.Args()
	}

	if len(paths) == 0 && (command == app.CommandRun || command == app.CommandDump) {
		slog.Debug("No config path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if err := app.ValidateFormat(logFormat); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	if _, err := app.ParseLevel(logLevel); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Command:     command,
		ConfigPaths: paths,
		StateDir:    *stateFlag,
		Registry:    *registryFlag,
		ListenAddr:  *listenFlag,
		HistoryPath: *historyFlag,
		FromHistory: *fromHistoryFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		RemoteURL:   *urlFlag,
		Namespace:   *namespaceFlag,
		Reset:       *resetFlag,
		Sets:        sets,
		Signals:     signals,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
