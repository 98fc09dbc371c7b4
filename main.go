package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/weirdness/internal/build"
	"github.com/dtnitsch/weirdness/internal/runs"
	"github.com/dtnitsch/weirdness/internal/score"
	"github.com/dtnitsch/weirdness/internal/serve"
	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/caching"
	"github.com/dtnitsch/weirdness/pkg/db"
	"github.com/dtnitsch/weirdness/pkg/ngram"
)

func main() {
	app := &cli.App{
		Name:  "weirdness",
		Usage: "Rank specialist vocabulary against a Google Books unigram reference table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file; flags override its values",
			},
			&cli.StringFlag{
				Name:  "db",
				Value: db.DefaultDBName,
				Usage: "SQLite build ledger",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log per-worker debug output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Fetch partitions in parallel and write the reference table",
				Action: build.BuildAction,
				Flags: append(corpusFlags(),
					&cli.StringFlag{
						Name:  "keys",
						Usage: "Comma-separated partition keys (default a..z)",
					},
					&cli.BoolFlag{
						Name:  "discover",
						Usage: "Discover partition keys from the dataset index page",
					},
					&cli.StringFlag{
						Name:  "marker",
						Value: models.DefaultMarker,
						Usage: "N-grams containing this marker are skipped",
					},
					&cli.StringFlag{
						Name:  "source-dir",
						Usage: "Read partition files from a local directory instead of downloading",
					},
					&cli.StringFlag{
						Name:  "base-url",
						Value: ngram.DefaultBaseURL,
						Usage: "Partition download location",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent partition fetches (default: number of CPUs)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Reference table path (default <LANG>_GoogleUnigrams.csv)",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Exit non-zero when any partition fails",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "yaml",
						Usage: "Summary format: yaml or json",
					},
				),
			},
			{
				Name:   "keys",
				Usage:  "List the partition keys published for a language and version",
				Action: build.KeysAction,
				Flags:  corpusFlags(),
			},
			{
				Name:      "score",
				Usage:     "Rank the words of a text by weirdness",
				Action:    score.ScoreAction,
				ArgsUsage: " ",
				Flags: append(scoreFlags(),
					&cli.StringFlag{Name: "text", Usage: "Specialist text"},
					&cli.StringFlag{Name: "file", Usage: "Specialist text file; .html files are reduced to readable text"},
					&cli.StringFlag{Name: "url", Usage: "Specialist page URL"},
					&cli.StringFlag{
						Name:  "cache-dir",
						Value: ".weirdness-cache",
						Usage: "Cache directory for fetched pages",
					},
					&cli.DurationFlag{
						Name:  "cache-ttl",
						Value: caching.DefaultTTL,
						Usage: "How long fetched pages stay cached",
					},
					&cli.BoolFlag{Name: "no-cache", Usage: "Always refetch pages"},
					&cli.StringFlag{
						Name:  "format",
						Value: "text",
						Usage: "Output format: text or yaml",
					},
				),
			},
			{
				Name:      "runs",
				Usage:     "List recorded builds, or show one build",
				ArgsUsage: "[run-id]",
				Action:    runs.RunsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Maximum number of builds to list",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve POST /score over HTTP",
				Action: serve.ServeAction,
				Flags: append(scoreFlags(),
					&cli.StringFlag{
						Name:  "addr",
						Value: ":8080",
						Usage: "Listen address",
					},
					&cli.DurationFlag{
						Name:  "cache-ttl",
						Value: 10 * time.Minute,
						Usage: "How long score responses stay cached",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func corpusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "lang",
			Value: models.DefaultLanguage,
			Usage: "Corpus language code (eng, fre, ger, ...)",
		},
		&cli.StringFlag{
			Name:  "version",
			Value: models.DefaultVersion,
			Usage: "Corpus version",
		},
		&cli.StringFlag{
			Name:  "index-url",
			Value: ngram.DefaultIndexURL,
			Usage: "Dataset index page used to discover partition keys",
		},
	}
}

func scoreFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "table",
			Aliases: []string{"t"},
			Usage:   "Reference table produced by build",
		},
		&cli.IntFlag{
			Name:  "top-n",
			Value: models.DefaultTopN,
			Usage: "Maximum number of words to return",
		},
		&cli.Float64Flag{
			Name:  "min-weirdness",
			Value: models.DefaultMinWeirdness,
			Usage: "Drop words scoring below this",
		},
		&cli.BoolFlag{
			Name:  "drop-stopwords",
			Usage: "Ignore common function words",
		},
		&cli.StringFlag{
			Name:  "lang",
			Value: models.DefaultLanguage,
			Usage: "Reference corpus language, used to warn about mismatched text",
		},
	}
}
