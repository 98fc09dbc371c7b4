package score

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/weirdness/internal/common"
	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/caching"
	"github.com/dtnitsch/weirdness/pkg/fetcher"
	"github.com/dtnitsch/weirdness/pkg/reftable"
)

// ApplyFlags overrides config file values with explicitly set flags.
func ApplyFlags(c *cli.Context, cfg *models.ScoreConfig) {
	if c.IsSet("table") {
		cfg.Table = c.String("table")
	}
	if c.IsSet("top-n") {
		cfg.TopN = c.Int("top-n")
	}
	if c.IsSet("min-weirdness") {
		cfg.MinWeirdness = c.Float64("min-weirdness")
	}
	if c.IsSet("drop-stopwords") {
		cfg.DropStopwords = c.Bool("drop-stopwords")
	}
	if c.IsSet("lang") {
		cfg.Language = c.String("lang")
	}
}

func ScoreAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	config, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	cfg := &config.Score
	ApplyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	loader := &Loader{Fetcher: fetcher.NewFetcher(), Logger: logger}
	if dir := c.String("cache-dir"); dir != "" && !c.Bool("no-cache") {
		cache, err := caching.NewCache(dir, c.Duration("cache-ttl"))
		if err != nil {
			return err
		}
		loader.Cache = cache
	}

	text, err := loader.Load(c.Context, TextSource{
		Text: c.String("text"),
		File: c.String("file"),
		URL:  c.String("url"),
	})
	if err != nil {
		return err
	}

	general, stats, err := reftable.Load(cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to load reference table: %w", err)
	}
	if stats.Skipped > 0 {
		logger.Warn("Skipped malformed reference rows", "path", cfg.Table, "skipped", stats.Skipped)
	}
	logger.Info("Loaded reference table", "path", cfg.Table, "words", general.Len())

	scores, err := Score(text, general, cfg, logger)
	if err != nil {
		return err
	}
	return Print(os.Stdout, scores, c.String("format"))
}
