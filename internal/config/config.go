package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"TW_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"TW_DB_MAX_CONNS" default:"8"`

	SimilarityThreshold float64 `envconfig:"TW_SIMILARITY_THRESHOLD" default:"0.2"`
	LookbackDays        int     `envconfig:"TW_LOOKBACK_DAYS" default:"21"`
	BackfillWindowDays  int     `envconfig:"TW_BACKFILL_WINDOW_DAYS" default:"21"`
	BackfillBatchSize   int     `envconfig:"TW_BACKFILL_BATCH_SIZE" default:"100"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("TW_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("TW_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("TW_DB_MIN_CONNS (%d) cannot exceed TW_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("TW_SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	if c.LookbackDays < 1 {
		return fmt.Errorf("TW_LOOKBACK_DAYS must be >= 1")
	}
	if c.BackfillWindowDays < 1 {
		return fmt.Errorf("TW_BACKFILL_WINDOW_DAYS must be >= 1")
	}
	if c.BackfillBatchSize < 1 {
		return fmt.Errorf("TW_BACKFILL_BATCH_SIZE must be >= 1")
	}
	return nil
}
