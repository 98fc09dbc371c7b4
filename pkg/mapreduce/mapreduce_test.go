package mapreduce

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/internalerr"
	"github.com/dtnitsch/weirdness/pkg/ngram"
	"github.com/dtnitsch/weirdness/pkg/reftable"
)

// fakeSource serves fixed records per key; failAt makes iteration fail after
// that many records.
type fakeSource struct {
	records map[string][]ngram.Record
	openErr map[string]error
	failAt  map[string]int
}

type sliceIterator struct {
	recs   []ngram.Record
	pos    int
	failAt int
	closed bool
}

func (it *sliceIterator) Next() (ngram.Record, error) {
	if it.failAt >= 0 && it.pos == it.failAt {
		return ngram.Record{}, errors.New("connection reset")
	}
	if it.pos >= len(it.recs) {
		return ngram.Record{}, io.EOF
	}
	rec := it.recs[it.pos]
	it.pos++
	return rec, nil
}

func (it *sliceIterator) Close() error {
	it.closed = true
	return nil
}

func (f *fakeSource) Records(ctx context.Context, key string) (ngram.Iterator, error) {
	if err := f.openErr[key]; err != nil {
		return nil, err
	}
	failAt := -1
	if n, ok := f.failAt[key]; ok {
		failAt = n
	}
	return &sliceIterator{recs: f.records[key], failAt: failAt}, nil
}

func rec(ngramText string, match int64) ngram.Record {
	return ngram.Record{Ngram: ngramText, Year: 2000, MatchCount: match, VolumeCount: 1}
}

func TestMapFoldsRecords(t *testing.T) {
	src := &fakeSource{records: map[string][]ngram.Record{
		"d": {
			rec("dog", 7),
			rec("Dog", 3),
			rec("dog_NOUN", 100),
			rec("dogma", 4),
			rec("DOG", 5),
		},
	}}

	got, err := Map(context.Background(), src, "d", "_")
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	want := map[string]models.WordStats{
		"dog":   {Freq: 15, Count: 3},
		"dogma": {Freq: 4, Count: 1},
	}
	if got.Key != "d" || !reflect.DeepEqual(got.Stats, want) {
		t.Errorf("Map() = %+v, want key d stats %v", got, want)
	}
}

func TestMapPartitionFailure(t *testing.T) {
	src := &fakeSource{
		records: map[string][]ngram.Record{"q": {rec("quay", 1), rec("queen", 2)}},
		openErr: map[string]error{"x": errors.New("404")},
		failAt:  map[string]int{"q": 1},
	}

	for _, key := range []string{"q", "x"} {
		got, err := Map(context.Background(), src, key, "_")
		if !errors.Is(err, internalerr.ErrPartitionFetch) {
			t.Fatalf("Map(%s) error = %v, want ErrPartitionFetch", key, err)
		}
		var perr *internalerr.PartitionError
		if !errors.As(err, &perr) || perr.Key != key {
			t.Errorf("Map(%s) error = %v, want PartitionError for key %s", key, err, key)
		}
		if len(got.Stats) != 0 {
			t.Errorf("Map(%s) kept partial stats %v", key, got.Stats)
		}
	}
}

func TestReduceMergesOverlappingPartitions(t *testing.T) {
	p1 := models.PartitionResult{Key: "1", Stats: map[string]models.WordStats{"dog": {Freq: 10, Count: 2}}}
	p2 := models.PartitionResult{Key: "2", Stats: map[string]models.WordStats{"dog": {Freq: 5, Count: 1}}}

	merged := Reduce([]models.PartitionResult{p1, p2})
	if merged["dog"] != (models.WordStats{Freq: 15, Count: 3}) {
		t.Errorf("merged dog = %+v, want {15 3}", merged["dog"])
	}

	table, err := Relative(merged)
	if err != nil {
		t.Fatalf("Relative() error = %v", err)
	}
	if table.Freqs["dog"] != 5.0 {
		t.Errorf("relative dog = %v, want 5.0", table.Freqs["dog"])
	}
}

func TestReduceDoesNotMutatePartials(t *testing.T) {
	p1 := models.PartitionResult{Key: "1", Stats: map[string]models.WordStats{"dog": {Freq: 10, Count: 2}}}
	p2 := models.PartitionResult{Key: "2", Stats: map[string]models.WordStats{"dog": {Freq: 5, Count: 1}}}

	Reduce([]models.PartitionResult{p1, p2})
	Reduce([]models.PartitionResult{p1, p2})
	if p1.Stats["dog"] != (models.WordStats{Freq: 10, Count: 2}) {
		t.Errorf("partial was mutated: %+v", p1.Stats["dog"])
	}
}

func permutations(in []models.PartitionResult) [][]models.PartitionResult {
	if len(in) <= 1 {
		return [][]models.PartitionResult{append([]models.PartitionResult(nil), in...)}
	}
	var out [][]models.PartitionResult
	for i := range in {
		rest := make([]models.PartitionResult, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]models.PartitionResult{in[i]}, p...))
		}
	}
	return out
}

func TestMergeOrderProducesIdenticalTable(t *testing.T) {
	partials := []models.PartitionResult{
		{Key: "a", Stats: map[string]models.WordStats{"apple": {Freq: 9, Count: 3}, "ant": {Freq: 1, Count: 1}}},
		{Key: "b", Stats: map[string]models.WordStats{"bee": {Freq: 10, Count: 3}, "apple": {Freq: 2, Count: 1}}},
		{Key: "c", Stats: map[string]models.WordStats{"cat": {Freq: 7, Count: 2}, "bee": {Freq: 1, Count: 4}}},
		{Key: "d", Stats: map[string]models.WordStats{"dog": {Freq: 22, Count: 7}}},
	}

	var want []byte
	for i, perm := range permutations(partials) {
		table, err := Relative(Reduce(perm))
		if err != nil {
			t.Fatalf("Relative() error = %v", err)
		}
		var buf bytes.Buffer
		if err := reftable.Write(&buf, table); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if i == 0 {
			want = buf.Bytes()
			continue
		}
		if !bytes.Equal(buf.Bytes(), want) {
			t.Fatalf("permutation %d produced\n%s\nwant\n%s", i, buf.Bytes(), want)
		}
	}

	wantText := "ant;1.0\napple;2.75\nbee;1.57\ncat;3.5\ndog;3.14\n"
	if string(want) != wantText {
		t.Errorf("table = %q, want %q", want, wantText)
	}
}

func TestRelativeZeroCount(t *testing.T) {
	_, err := Relative(models.AggregateTable{"ghost": {Freq: 3, Count: 0}})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Relative() error = %v, want ErrInvalidInput", err)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{5, 5},
		{10.0 / 3, 3.33},
		{2.0 / 3, 0.67},
		{2.675, 2.67}, // binary value sits just below the tie
		{0.125, 0.12}, // exact tie rounds to even
		{1234.5678, 1234.57},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTopWords(t *testing.T) {
	table := models.NewGeneralTable()
	table.Set("ant", 1)
	table.Set("the", 53.21)
	table.Set("of", 20)
	table.Set("and", 20)

	got := TopWords(table, 3)
	want := []string{"the:53.21", "of:20.00", "and:20.00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopWords() = %v, want %v", got, want)
	}
	if len(TopWords(table, 10)) != 4 {
		t.Error("TopWords() should cap at table size")
	}
	if len(TopWords(table, -1)) != 0 {
		t.Error("TopWords() with negative n should be empty")
	}
}
