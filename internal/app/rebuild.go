package app

import (
	"flag"
	"fmt"
	"os"

	"horse.fit/trendwatch/internal/cli"
	"horse.fit/trendwatch/internal/globaltime"
)

func runRebuild(args []string) int {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	loader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	_, logger, pool, err := bootstrap(ctx, loader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer pool.Close()

	affected, err := pool.RebuildGroupMeta(ctx, globaltime.UTC())
	if err != nil {
		logger.Error().Err(err).Msg("group metadata rebuild failed")
		return 1
	}

	logger.Info().Int64("groups", affected).Msg("group metadata rebuilt")
	fmt.Printf("groups=%d\n", affected)
	return 0
}
