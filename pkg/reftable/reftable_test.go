package reftable

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dtnitsch/weirdness/models"
)

func TestReadSkipsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"the;53.21",
		"dog;5.0",
		"broken",
		"too;many;fields",
		"cat;abc",
		"",
		"fish; 2.5 ",
		"ghost;nan",
		"big;1e+16",
	}, "\n") + "\n"

	table, stats, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	wantWords := []string{"the", "dog", "fish", "big"}
	if !reflect.DeepEqual(table.Words, wantWords) {
		t.Errorf("Words = %v, want %v", table.Words, wantWords)
	}
	if table.Freqs["the"] != 53.21 || table.Freqs["dog"] != 5.0 || table.Freqs["fish"] != 2.5 || table.Freqs["big"] != 1e16 {
		t.Errorf("Freqs = %v", table.Freqs)
	}
	if stats.Skipped != 4 {
		t.Errorf("Skipped = %d, want 4", stats.Skipped)
	}
}

func TestReadCRLF(t *testing.T) {
	table, _, err := Read(strings.NewReader("dog;5.0\r\ncat;2.25\r\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if table.Len() != 2 || table.Freqs["cat"] != 2.25 {
		t.Errorf("Read() = %+v", table)
	}
}

func TestReadDuplicateKeepsFirstPositionLastValue(t *testing.T) {
	table, _, err := Read(strings.NewReader("dog;5.0\ncat;1.0\ndog;7.5\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !reflect.DeepEqual(table.Words, []string{"dog", "cat"}) {
		t.Errorf("Words = %v", table.Words)
	}
	if table.Freqs["dog"] != 7.5 {
		t.Errorf("dog = %v, want 7.5", table.Freqs["dog"])
	}
	if table.Total() != 8.5 {
		t.Errorf("Total() = %v, want 8.5", table.Total())
	}
}

func TestWriteFormat(t *testing.T) {
	table := models.NewGeneralTable()
	table.Set("dog", 5.0)
	table.Set("apple", 1234.57)
	table.Set("zero", 0)
	table.Set("huge", 2.5e17)

	var buf bytes.Buffer
	if err := Write(&buf, table); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := "dog;5.0\napple;1234.57\nzero;0.0\nhuge;2.5e+17\n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5.0"},
		{0.25, "0.25"},
		{15.0 / 3, "5.0"},
		{1234.57, "1234.57"},
		{1e16, "1e+16"},
		{math.Inf(1), "inf"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	table := models.NewGeneralTable()
	table.Set("zebra", 12.5)
	table.Set("apple", 3.0)
	table.Set("naïve", 0.33)
	table.Set("quote\"d", 7.77)
	table.Set("mango", 100000.01)

	path := filepath.Join(t.TempDir(), "ENG_GoogleUnigrams.csv")
	if err := Save(table, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, stats, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stats.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", stats.Skipped)
	}
	if !reflect.DeepEqual(loaded.Words, table.Words) {
		t.Errorf("Words = %v, want %v", loaded.Words, table.Words)
	}
	if !reflect.DeepEqual(loaded.Freqs, table.Freqs) {
		t.Errorf("Freqs = %v, want %v", loaded.Freqs, table.Freqs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("Load() should fail on a missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want a not-exist error", err)
	}
}
