package app

import (
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/trendwatch/internal/cli"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	loader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Connection timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()
	ctx, timeoutCancel := contextWithTimeout(ctx, *timeout)
	defer timeoutCancel()

	_, logger, pool, err := bootstrap(ctx, loader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer pool.Close()

	stats, err := pool.QueryStats(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("health check failed")
		return 1
	}

	logger.Info().
		Int64("items", stats.Items).
		Int64("grouped_items", stats.GroupedItems).
		Int64("groups", stats.Groups).
		Msg("database reachable")
	fmt.Println("ok")
	return 0
}
