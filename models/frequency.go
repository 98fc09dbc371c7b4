package models

// SpecialistTable maps words of a specialist text to their occurrence counts.
// Words keeps first-seen order so ties in scoring resolve deterministically.
type SpecialistTable struct {
	Words  []string
	Counts map[string]int
}

// NewSpecialistTable returns an empty table ready for Add.
func NewSpecialistTable() *SpecialistTable {
	return &SpecialistTable{Counts: make(map[string]int)}
}

// SpecialistTableFromMap builds a table from a plain map, ordering words by
// the given order first and appending any remaining words afterwards.
// Words with a count below 1 are dropped.
func SpecialistTableFromMap(counts map[string]int, order []string) *SpecialistTable {
	t := NewSpecialistTable()
	for _, w := range order {
		if n, ok := counts[w]; ok {
			t.Add(w, n)
		}
	}
	for w, n := range counts {
		if _, seen := t.Counts[w]; !seen {
			t.Add(w, n)
		}
	}
	return t
}

// Add increments word by n. Non-positive n is ignored so a word is never
// materialized with a zero count.
func (t *SpecialistTable) Add(word string, n int) {
	if n < 1 {
		return
	}
	if _, ok := t.Counts[word]; !ok {
		t.Words = append(t.Words, word)
	}
	t.Counts[word] += n
}

// Len returns the number of distinct words.
func (t *SpecialistTable) Len() int {
	return len(t.Words)
}

// Total returns the sum of all counts (ts).
func (t *SpecialistTable) Total() int {
	total := 0
	for _, w := range t.Words {
		total += t.Counts[w]
	}
	return total
}

// GeneralTable maps words of the reference corpus to relative frequencies.
// Words keeps insertion order, which is also the persisted row order.
type GeneralTable struct {
	Words []string
	Freqs map[string]float64
}

// NewGeneralTable returns an empty table.
func NewGeneralTable() *GeneralTable {
	return &GeneralTable{Freqs: make(map[string]float64)}
}

// Set stores freq for word. An existing word keeps its position.
func (t *GeneralTable) Set(word string, freq float64) {
	if _, ok := t.Freqs[word]; !ok {
		t.Words = append(t.Words, word)
	}
	t.Freqs[word] = freq
}

// Get returns the frequency of word, or fallback when it is absent.
func (t *GeneralTable) Get(word string, fallback float64) float64 {
	if f, ok := t.Freqs[word]; ok {
		return f
	}
	return fallback
}

// Len returns the number of words.
func (t *GeneralTable) Len() int {
	return len(t.Words)
}

// Total returns the sum of all frequencies (tg).
func (t *GeneralTable) Total() float64 {
	total := 0.0
	for _, w := range t.Words {
		total += t.Freqs[w]
	}
	return total
}

// WordStats is the running sum of match counts for a word and the number of
// source records that contributed to it.
type WordStats struct {
	Freq  int64
	Count int64
}

// Add combines two stats additively.
func (s WordStats) Add(o WordStats) WordStats {
	return WordStats{Freq: s.Freq + o.Freq, Count: s.Count + o.Count}
}

// PartitionResult holds the folded records of one partition key.
type PartitionResult struct {
	Key   string
	Stats map[string]WordStats
}

// AggregateTable is the union of all partition results.
type AggregateTable map[string]WordStats

// WeirdnessScore pairs a specialist word with its weirdness index.
type WeirdnessScore struct {
	Word  string  `json:"word" yaml:"word"`
	Score float64 `json:"score" yaml:"score"`
}
