// Package pipeline builds a general reference table by fetching partitions
// concurrently and merging what completed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/internalerr"
	"github.com/dtnitsch/weirdness/pkg/mapreduce"
	"github.com/dtnitsch/weirdness/pkg/ngram"
)

// Job defines a partition for a worker to fetch.
type Job struct {
	Key string
}

// Result holds the outcome of one partition fetch.
type Result struct {
	Key       string
	Partition models.PartitionResult
	Error     error
	Duration  time.Duration
}

// PartitionFailure records a partition that is missing from the merged table.
type PartitionFailure struct {
	Key string
	Err error
}

// Outcome is the merged table together with the partitions it covers.
type Outcome struct {
	Table     *models.GeneralTable
	Succeeded []string
	Failed    []PartitionFailure
}

// Complete reports whether every requested partition contributed.
func (o *Outcome) Complete() bool {
	return len(o.Failed) == 0
}

// FailedKeys returns the keys of failed partitions, sorted.
func (o *Outcome) FailedKeys() []string {
	keys := make([]string, len(o.Failed))
	for i, f := range o.Failed {
		keys[i] = f.Key
	}
	return keys
}

// Options configures a Pool.
type Options struct {
	// Workers caps parallelism; zero means runtime.NumCPU().
	Workers int
	// Marker excludes n-grams containing it.
	Marker string
	Logger *slog.Logger
}

// Pool fetches partitions with a bounded set of workers. Workers only exist
// for the duration of Run.
type Pool struct {
	src     ngram.Source
	workers int
	marker  string
	logger  *slog.Logger
}

// NewPool creates a pool reading from src.
func NewPool(src ngram.Source, opts Options) *Pool {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{src: src, workers: workers, marker: opts.Marker, logger: logger}
}

// WorkerCount returns the number of workers Run would start for n keys.
func (p *Pool) WorkerCount(n int) int {
	if n < p.workers {
		return n
	}
	return p.workers
}

// Run fetches every key, tolerating per-partition failures, then merges and
// reduces the completed partitions into one table. An error is returned only
// for invalid arguments or an aggregation defect.
func (p *Pool) Run(ctx context.Context, keys []string) (*Outcome, error) {
	keys = p.uniqueKeys(keys)
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no partition keys", internalerr.ErrInvalidInput)
	}

	workerCount := p.WorkerCount(len(keys))
	p.logger.Info("Starting concurrent partition fetch", "partitions", len(keys), "workers", workerCount)

	var wg sync.WaitGroup
	jobs := make(chan Job, len(keys))
	results := make(chan Result, len(keys))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go p.worker(ctx, w, &wg, jobs, results)
	}

	for _, key := range keys {
		jobs <- Job{Key: key}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	outcome := &Outcome{}
	partials := make([]models.PartitionResult, 0, len(keys))
	done := 0
	for result := range results {
		done++
		if result.Error != nil {
			p.logger.Error("Error processing partition", "partition", result.Key, "error", result.Error, "progress", fmt.Sprintf("%d/%d", done, len(keys)))
			outcome.Failed = append(outcome.Failed, PartitionFailure{Key: result.Key, Err: result.Error})
			continue
		}
		p.logger.Info("Completed partition", "partition", result.Key, "entries", len(result.Partition.Stats), "duration", result.Duration, "progress", fmt.Sprintf("%d/%d", done, len(keys)))
		outcome.Succeeded = append(outcome.Succeeded, result.Key)
		partials = append(partials, result.Partition)
	}
	p.logger.Info("All partition workers finished", "succeeded", len(outcome.Succeeded), "failed", len(outcome.Failed))

	sort.Strings(outcome.Succeeded)
	sort.Slice(outcome.Failed, func(i, j int) bool {
		return outcome.Failed[i].Key < outcome.Failed[j].Key
	})

	merged := mapreduce.Reduce(partials)
	p.logger.Info("Merged partitions", "unique_ngrams", len(merged))

	table, err := mapreduce.Relative(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to compute relative frequencies: %w", err)
	}
	outcome.Table = table
	return outcome, nil
}

// worker fetches partitions from jobs until the channel is closed.
func (p *Pool) worker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		p.logger.Debug("Worker started partition", "worker_id", id, "partition", job.Key)
		results <- p.fetch(ctx, job.Key)
	}
}

// fetch runs one partition and converts a panic in the source into a failure.
func (p *Pool) fetch(ctx context.Context, key string) (result Result) {
	start := time.Now()
	result.Key = key
	defer func() {
		if r := recover(); r != nil {
			result.Partition = models.PartitionResult{Key: key}
			result.Error = internalerr.NewPartitionError(key, fmt.Errorf("panic: %v", r))
		}
		result.Duration = time.Since(start)
	}()

	result.Partition, result.Error = mapreduce.Map(ctx, p.src, key, p.marker)
	return result
}

func (p *Pool) uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			p.logger.Warn("Ignoring duplicate partition key", "partition", k)
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
