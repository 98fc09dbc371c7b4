package mapreduce

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/internalerr"
	"github.com/dtnitsch/weirdness/pkg/ngram"
)

// Map folds the records of one partition into per-word stats. N-grams are
// lowercased and any n-gram containing marker is dropped, which removes
// compound and tagged entries. A source or iteration failure is returned as an
// *internalerr.PartitionError and no partial result is kept.
func Map(ctx context.Context, src ngram.Source, key, marker string) (models.PartitionResult, error) {
	result := models.PartitionResult{Key: key, Stats: make(map[string]models.WordStats)}

	it, err := src.Records(ctx, key)
	if err != nil {
		return models.PartitionResult{Key: key}, internalerr.NewPartitionError(key, err)
	}
	defer it.Close()

	lower := cases.Lower(language.Und)
	for {
		rec, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.PartitionResult{Key: key}, internalerr.NewPartitionError(key, err)
		}

		word := lower.String(rec.Ngram)
		if marker != "" && strings.Contains(word, marker) {
			continue
		}
		result.Stats[word] = result.Stats[word].Add(models.WordStats{Freq: rec.MatchCount, Count: 1})
	}

	return result, nil
}

// Reduce aggregates partition results into a single table by summing freq and
// count per word. The result does not depend on the order of partials.
func Reduce(partials []models.PartitionResult) models.AggregateTable {
	finalResults := make(models.AggregateTable)

	for _, p := range partials {
		for word, stats := range p.Stats {
			finalResults[word] = finalResults[word].Add(stats)
		}
	}

	return finalResults
}

// Relative reduces every word to round(freq/count, 2). Words are emitted in
// lexicographic order so the persisted table is reproducible.
func Relative(agg models.AggregateTable) (*models.GeneralTable, error) {
	words := make([]string, 0, len(agg))
	for w := range agg {
		words = append(words, w)
	}
	sort.Strings(words)

	table := models.NewGeneralTable()
	for _, w := range words {
		stats := agg[w]
		if stats.Count <= 0 {
			return nil, fmt.Errorf("%w: word %q has no contributing records", internalerr.ErrInvalidInput, w)
		}
		table.Set(w, Round2(float64(stats.Freq)/float64(stats.Count)))
	}
	return table, nil
}

// Round2 rounds v to two decimal places, resolving exact ties to even on the
// binary value the way decimal formatting does.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
