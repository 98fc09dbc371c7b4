package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/db"
	"github.com/dtnitsch/weirdness/pkg/fetcher"
	"github.com/dtnitsch/weirdness/pkg/mapreduce"
	"github.com/dtnitsch/weirdness/pkg/ngram"
	"github.com/dtnitsch/weirdness/pkg/pipeline"
	"github.com/dtnitsch/weirdness/pkg/reftable"
	"github.com/dtnitsch/weirdness/pkg/storage"
)

const topWordCount = 10

// NewSource returns the partition source named by cfg: a local directory when
// SourceDir is set, the Google Books bucket otherwise.
func NewSource(cfg *models.BuildConfig, f *fetcher.Fetcher) ngram.Source {
	if cfg.SourceDir != "" {
		return &ngram.Dir{Path: cfg.SourceDir, Language: cfg.Language, Version: cfg.Version}
	}
	return ngram.NewGoogleBooks(f, cfg.BaseURL, cfg.Language, cfg.Version)
}

func sourceName(cfg *models.BuildConfig) string {
	if cfg.SourceDir != "" {
		return cfg.SourceDir
	}
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return ngram.DefaultBaseURL
}

// Run builds the reference table for cfg, writes it to cfg.Output and records
// the build in database when it is not nil. A partial table is still written.
func Run(ctx context.Context, cfg *models.BuildConfig, src ngram.Source, database *db.DB, logger *slog.Logger) (*FinalOutput, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	pool := pipeline.NewPool(src, pipeline.Options{
		Workers: cfg.WorkerCount,
		Marker:  cfg.Marker,
		Logger:  logger,
	})
	outcome, err := pool.Run(ctx, cfg.Keys)
	if err != nil {
		return nil, err
	}

	out := &FinalOutput{
		Status: db.BuildStatus(len(outcome.Succeeded), len(outcome.Failed)),
		Stats: Stats{
			TotalPartitions: len(outcome.Succeeded) + len(outcome.Failed),
			Successful:      len(outcome.Succeeded),
			Failed:          len(outcome.Failed),
			UniqueWords:     outcome.Table.Len(),
			TopWords:        mapreduce.TopWords(outcome.Table, topWordCount),
		},
	}
	for _, key := range outcome.Succeeded {
		out.Partitions = append(out.Partitions, PartitionOutput{Key: key, Status: db.PartitionOK})
	}
	for _, f := range outcome.Failed {
		out.Partitions = append(out.Partitions, PartitionOutput{Key: f.Key, Status: db.PartitionFailed, Error: f.Err.Error()})
	}

	if len(outcome.Succeeded) > 0 {
		if err := reftable.Save(outcome.Table, cfg.Output); err != nil {
			return nil, fmt.Errorf("failed to save reference table: %w", err)
		}
		s := &storage.Storage{}
		if st, err := s.GetFileStats(cfg.Output); err == nil {
			out.Stats.OutputBytes = st.SizeBytes
		}
		out.Output = cfg.Output
		logger.Info("Saved reference table", "path", cfg.Output, "words", outcome.Table.Len(), "bytes", out.Stats.OutputBytes)
	} else {
		logger.Error("No partition succeeded, reference table not written", "partitions", len(outcome.Failed))
	}
	logger.Info("Top words", "words", out.Stats.TopWords)

	finishTime := time.Now()
	out.Stats.TotalTimeSeconds = finishTime.Sub(startTime).Seconds()

	if database != nil {
		record := &db.Build{
			StartedAt:      startTime,
			FinishedAt:     finishTime,
			Language:       cfg.Language,
			Version:        cfg.Version,
			Source:         sourceName(cfg),
			Marker:         cfg.Marker,
			Workers:        pool.WorkerCount(out.Stats.TotalPartitions),
			PartitionCount: out.Stats.TotalPartitions,
			SucceededCount: out.Stats.Successful,
			FailedCount:    out.Stats.Failed,
			WordCount:      out.Stats.UniqueWords,
			OutputPath:     out.Output,
			OutputBytes:    out.Stats.OutputBytes,
			Status:         out.Status,
		}
		for _, p := range out.Partitions {
			record.Partitions = append(record.Partitions, db.BuildPartition{Key: p.Key, Status: p.Status, ErrorMessage: p.Error})
		}
		if err := database.RecordBuild(record); err != nil {
			// the table is already written; a ledger failure does not fail the build
			logger.Error("failed to record build", "error", err)
		} else {
			out.RunID = record.RunID
		}
	}

	return out, nil
}
