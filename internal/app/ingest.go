package app

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"horse.fit/trendwatch/internal/cli"
	"horse.fit/trendwatch/internal/ingest"
)

func runIngest(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	loader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	failFast := fs.Bool("fail-fast", false, "Stop at the first invalid payload")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: trendwatch ingest [flags] <payload.json> [...]")
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

	service := ingest.NewService(pool, logger)

	var inserted, skipped, failed int
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn().Msg("ingest interrupted")
			return 1
		}

		payload, err := os.ReadFile(path)
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("read payload file failed")
			failed++
			if *failFast {
				return 1
			}
			continue
		}

		result, err := service.IngestOne(ctx, json.RawMessage(payload))
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("ingest payload failed")
			failed++
			if *failFast {
				return 1
			}
			continue
		}

		if result.Inserted {
			inserted++
		} else {
			skipped++
		}
	}

	logger.Info().
		Int("inserted", inserted).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("ingest finished")

	if failed > 0 {
		return 1
	}
	return 0
}
