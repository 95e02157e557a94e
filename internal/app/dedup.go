package app

import (
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/trendwatch/internal/cli"
	"horse.fit/trendwatch/internal/globaltime"
	"horse.fit/trendwatch/internal/grouping"
)

func runDedup(args []string) int {
	fs := flag.NewFlagSet("dedup", flag.ExitOnError)
	loader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	sinceFlag := fs.String("since", "", "Watermark as RFC 3339; items published after it are processed")
	minutes := fs.Int("minutes", 60, "Watermark as minutes before now (ignored when --since is set)")
	threshold := fs.Float64("threshold", 0, "Similarity threshold override (0 uses configuration)")
	lookbackDays := fs.Int("lookback-days", 0, "Candidate lookback window override in days (0 uses configuration)")
	reprocess := fs.Bool("reprocess", false, "Re-evaluate items that already carry a group")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	cfg, logger, pool, err := bootstrap(ctx, loader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer pool.Close()

	since := globaltime.UTC().Add(-time.Duration(*minutes) * time.Minute)
	if *sinceFlag != "" {
		parsed, parseErr := time.Parse(time.RFC3339, *sinceFlag)
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --since %q: %v\n", *sinceFlag, parseErr)
			return 2
		}
		since = parsed.UTC()
	}

	opts := grouping.Options{
		SimilarityThreshold: cfg.SimilarityThreshold,
		LookbackDays:        cfg.LookbackDays,
		Reprocess:           *reprocess,
	}
	if *threshold > 0 {
		opts.SimilarityThreshold = *threshold
	}
	if *lookbackDays > 0 {
		opts.LookbackDays = *lookbackDays
	}

	engine := grouping.NewEngine(pool, nil, logger, opts)
	runner := grouping.NewIncrementalRunner(pool, engine, logger)

	result, err := runner.Run(ctx, since)
	if err != nil {
		logger.Error().Err(err).Msg("incremental grouping run failed")
		return 1
	}

	fmt.Printf("processed=%d joined=%d seeded=%d exact_duplicates=%d skipped=%d\n",
		result.Processed, result.Joined, result.Seeded, result.ExactDuplicates, result.Skipped)
	return 0
}
