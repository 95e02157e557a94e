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

func runBackfill(args []string) int {
	fs := flag.NewFlagSet("backfill", flag.ExitOnError)
	loader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	refDateFlag := fs.String("ref-date", "", "Window end date as YYYY-MM-DD (defaults to today)")
	windowDays := fs.Int("window-days", 0, "Window size in days before the reference date (0 uses configuration)")
	threshold := fs.Float64("threshold", 0, "Similarity threshold override (0 uses configuration)")
	lookbackDays := fs.Int("lookback-days", 0, "Candidate lookback window override in days (0 uses configuration)")
	batchSize := fs.Int("batch-size", 0, "Progress reporting interval (0 uses configuration)")
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

	refDate := globaltime.UTC()
	if *refDateFlag != "" {
		parsed, parseErr := time.Parse("2006-01-02", *refDateFlag)
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --ref-date %q: %v\n", *refDateFlag, parseErr)
			return 2
		}
		refDate = parsed.UTC()
	}

	window := cfg.BackfillWindowDays
	if *windowDays > 0 {
		window = *windowDays
	}
	batch := cfg.BackfillBatchSize
	if *batchSize > 0 {
		batch = *batchSize
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
	runner := grouping.NewBackfillRunner(pool, engine, logger, batch)

	result, err := runner.Run(ctx, refDate, window)
	if err != nil {
		logger.Error().Err(err).Msg("backfill grouping run failed")
		return 1
	}

	fmt.Printf("processed=%d joined=%d seeded=%d exact_duplicates=%d skipped=%d\n",
		result.Processed, result.Joined, result.Seeded, result.ExactDuplicates, result.Skipped)
	return 0
}
