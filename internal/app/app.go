package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/trendwatch/internal/cli"
	"horse.fit/trendwatch/internal/config"
	"horse.fit/trendwatch/internal/db"
	"horse.fit/trendwatch/internal/logging"
)

// Run dispatches the trendwatch CLI and returns the process exit code.
func Run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 2
	}

	command := args[0]
	rest := args[1:]

	switch command {
	case "health":
		return runHealth(rest)
	case "ingest":
		return runIngest(rest)
	case "dedup":
		return runDedup(rest)
	case "backfill":
		return runBackfill(rest)
	case "rebuild":
		return runRebuild(rest)
	case "serve":
		return runServe(rest)
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: trendwatch <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health     Check database connectivity")
	fmt.Fprintln(os.Stderr, "  ingest     Validate and insert item payload files")
	fmt.Fprintln(os.Stderr, "  dedup      Group recently published items incrementally")
	fmt.Fprintln(os.Stderr, "  backfill   Re-group a historical window of items")
	fmt.Fprintln(os.Stderr, "  rebuild    Rebuild group metadata from item assignments")
	fmt.Fprintln(os.Stderr, "  serve      Start the read-only HTTP API")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Run 'trendwatch <command> -h' for command flags.")
}

// bootstrap loads the env file, parses configuration, builds the logger and
// opens the database pool. Callers own pool.Close().
func bootstrap(ctx context.Context, loader *cli.EnvLoader) (*config.Config, zerolog.Logger, *db.Pool, error) {
	if _, err := loader.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; relying on process environment\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("build logger: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("connect database: %w", err)
	}

	return cfg, logger, pool, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func contextWithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, d)
}
