package build

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/weirdness/internal/common"
	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/fetcher"
	"github.com/dtnitsch/weirdness/pkg/ngram"
)

// applyFlags overrides config file values with explicitly set flags.
func applyFlags(c *cli.Context, cfg *models.BuildConfig) {
	if c.IsSet("lang") {
		cfg.Language = c.String("lang")
		if !c.IsSet("output") {
			cfg.Output = fmt.Sprintf(models.DefaultOutputTemplate, strings.ToUpper(cfg.Language))
		}
	}
	if c.IsSet("version") {
		cfg.Version = c.String("version")
	}
	if c.IsSet("keys") {
		cfg.Keys = splitKeys(c.String("keys"))
	}
	if c.IsSet("marker") {
		cfg.Marker = c.String("marker")
	}
	if c.IsSet("source-dir") {
		cfg.SourceDir = c.String("source-dir")
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("workers") {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("strict") {
		cfg.Strict = c.Bool("strict")
	}
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func BuildAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	config, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	cfg := &config.Build
	applyFlags(c, cfg)

	f := fetcher.NewFetcher()
	if c.Bool("discover") {
		keys, err := ngram.NewCatalog(f, c.String("index-url")).Keys(c.Context, cfg.Language, cfg.Version)
		if err != nil {
			return fmt.Errorf("failed to discover partition keys: %w", err)
		}
		logger.Info("Discovered partition keys", "language", cfg.Language, "version", cfg.Version, "keys", len(keys))
		cfg.Keys = keys
	}

	database, err := common.OpenDB(config)
	if err != nil {
		return err
	}
	defer database.Close()

	out, err := Run(c.Context, cfg, NewSource(cfg, f), database, logger)
	if err != nil {
		return err
	}

	var outputData []byte
	if c.String("format") == "json" {
		outputData, err = json.MarshalIndent(out, "", "  ")
	} else {
		outputData, err = yaml.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal build output: %w", err)
	}
	fmt.Println(strings.TrimRight(string(outputData), "\n"))

	if out.Stats.Successful == 0 {
		return cli.Exit("every partition failed", 2)
	}
	if out.Stats.Failed > 0 && cfg.Strict {
		return cli.Exit(fmt.Sprintf("%d partitions failed", out.Stats.Failed), 1)
	}
	return nil
}

// KeysAction prints the partition keys published for a language and version.
func KeysAction(c *cli.Context) error {
	config, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	cfg := &config.Build
	applyFlags(c, cfg)

	keys, err := ngram.NewCatalog(fetcher.NewFetcher(), c.String("index-url")).Keys(c.Context, cfg.Language, cfg.Version)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	fmt.Printf("\nTotal: %d partitions\n", len(keys))
	return nil
}
