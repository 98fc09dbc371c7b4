// Package weirdness ranks specialist-corpus words by how much more often they
// occur there than in a general reference corpus.
//
// The weirdness index of a word w is
//
//	weirdness(w) = (ws / ts) / (wg / tg)
//
// Where:
//   - ws = occurrences of w in the specialist table, ts = sum of all specialist counts
//   - wg = relative frequency of w in the general table, tg = sum of all general values
//
// A word missing from the general table is scored with wg = FallbackFrequency.
package weirdness

import (
	"fmt"
	"sort"

	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/internalerr"
)

// FallbackFrequency is substituted for words absent from the general table.
// It is a constant, not a smoothing term proportional to tg.
const FallbackFrequency = 1.0

// Index returns the weirdness of a single word given both totals.
func Index(ws, ts, wg, tg float64) float64 {
	return (ws / ts) / (wg / tg)
}

// Score computes the weirdness of every specialist word, keeps the ones at or
// above minWeirdness and returns at most topN of them, highest first. Equal
// scores keep the specialist table's word order.
func Score(specialist *models.SpecialistTable, general *models.GeneralTable, topN int, minWeirdness float64) ([]models.WeirdnessScore, error) {
	if specialist == nil || general == nil {
		return nil, fmt.Errorf("%w: nil frequency table", internalerr.ErrInvalidInput)
	}

	ts := float64(specialist.Total())
	if ts <= 0 {
		return nil, fmt.Errorf("%w: specialist table has no occurrences", internalerr.ErrInvalidInput)
	}
	tg := general.Total()
	if tg <= 0 {
		return nil, fmt.Errorf("%w: general table has zero frequency mass", internalerr.ErrInvalidInput)
	}

	if topN <= 0 {
		return []models.WeirdnessScore{}, nil
	}

	scores := make([]models.WeirdnessScore, 0, specialist.Len())
	for _, word := range specialist.Words {
		ws := float64(specialist.Counts[word])
		wg := general.Get(word, FallbackFrequency)
		if wg <= 0 {
			return nil, fmt.Errorf("%w: general frequency of %q is %v", internalerr.ErrInvalidInput, word, wg)
		}
		w := Index(ws, ts, wg, tg)
		if w >= minWeirdness {
			scores = append(scores, models.WeirdnessScore{Word: word, Score: w})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if len(scores) > topN {
		scores = scores[:topN]
	}
	return scores, nil
}
