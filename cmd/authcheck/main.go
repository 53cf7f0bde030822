package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"

	"github.com/rflorenc/devops-auth-check/internal/config"
	"github.com/rflorenc/devops-auth-check/internal/console"
	"github.com/rflorenc/devops-auth-check/internal/credential"
	"github.com/rflorenc/devops-auth-check/internal/logging"
	"github.com/rflorenc/devops-auth-check/internal/preflight"
	"github.com/rflorenc/devops-auth-check/internal/runner"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitInterrupted follows the shell convention for SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Fprintf(stdout, "authcheck %s (commit: %s, built: %s)\n", version, commit, date)
			return 0
		}
	}

	cfg, err := config.Parse(args)
	if errors.Is(err, arg.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	snap, err := config.LoadSnapshot(cfg.EnvFile, os.LookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading environment file: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Azure DevOps authentication check %s\n", version)
	r := &runner.Runner{
		Config:   cfg,
		Snapshot: snap,
		Console:  console.New(stdin, stdout),
		Pinger:   preflight.NewSystemPinger(cfg.ProbeTimeout),
		Provider: credential.NewAzureCLI(cfg.Tool, cfg.ToolTimeout),
		Logger:   logger,
	}
	err = r.Run(ctx)
	logger.Sync()
	switch {
	case err == nil, errors.Is(err, runner.ErrStopped):
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "Interrupted")
		return exitInterrupted
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}
