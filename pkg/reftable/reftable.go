// Package reftable reads and writes the general reference table: a UTF-8 text
// file with one `word;relative_frequency` row per line and no header.
package reftable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/internalerr"
	"github.com/dtnitsch/weirdness/pkg/storage"
)

// Delimiter separates the word from its frequency.
const Delimiter = ';'

// LoadStats describes how many rows were read and how many were skipped.
type LoadStats struct {
	Rows    int
	Skipped int
}

// Load reads a persisted table from path. Malformed rows are skipped.
func Load(path string) (*models.GeneralTable, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open reference table: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a table from r. A row with other than two fields, or whose
// second field is not a finite number, counts as skipped and loading continues.
// A repeated word keeps its first position and takes the last value.
func Read(r io.Reader) (*models.GeneralTable, LoadStats, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	table := models.NewGeneralTable()
	var stats LoadStats
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.Rows++
				stats.Skipped++
				continue
			}
			return nil, stats, fmt.Errorf("failed to read reference table: %w", err)
		}
		stats.Rows++

		word, freq, err := parseRecord(record)
		if err != nil {
			stats.Skipped++
			continue
		}
		table.Set(word, freq)
	}
	return table, stats, nil
}

func parseRecord(record []string) (string, float64, error) {
	if len(record) != 2 {
		return "", 0, fmt.Errorf("%w: expected 2 fields, got %d", internalerr.ErrMalformedRecord, len(record))
	}
	freq, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return "", 0, fmt.Errorf("%w: non-numeric frequency %q", internalerr.ErrMalformedRecord, record[1])
	}
	return record[0], freq, nil
}

// Save writes table to path in table order, replacing any existing file atomically.
func Save(table *models.GeneralTable, path string) error {
	s := &storage.Storage{}
	return s.WriteFileAtomic(path, func(w io.Writer) error {
		return Write(w, table)
	})
}

// Write emits one `word;value` row per entry in table order.
func Write(w io.Writer, table *models.GeneralTable) error {
	writer := csv.NewWriter(w)
	writer.Comma = Delimiter

	for _, word := range table.Words {
		value := strings.TrimRightFunc(strings.ToLower(FormatValue(table.Freqs[word])), unicode.IsSpace)
		if err := writer.Write([]string{word, value}); err != nil {
			return fmt.Errorf("failed to write row for %q: %w", word, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush reference table: %w", err)
	}
	return nil
}

// FormatValue renders v the way the table has always been written: a decimal
// point is always present ("5.0"), and magnitudes from 1e16 up use exponent form.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.Abs(v) >= 1e16:
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
