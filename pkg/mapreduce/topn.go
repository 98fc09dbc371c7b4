package mapreduce

import (
	"fmt"
	"sort"

	"github.com/dtnitsch/weirdness/models"
)

// TopWords returns the n most frequent words of a reference table as
// "word:freq" strings (e.g., "the:53.21"). Equal frequencies keep table order.
func TopWords(table *models.GeneralTable, n int) []string {
	type kv struct {
		Key   string
		Value float64
	}

	ss := make([]kv, 0, table.Len())
	for _, w := range table.Words {
		ss = append(ss, kv{w, table.Freqs[w]})
	}

	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].Value > ss[j].Value
	})

	limit := n
	if len(ss) < n {
		limit = len(ss)
	}
	if limit < 0 {
		limit = 0
	}

	keywords := make([]string, limit)
	for i := 0; i < limit; i++ {
		keywords[i] = fmt.Sprintf("%s:%.2f", ss[i].Key, ss[i].Value)
	}

	return keywords
}
