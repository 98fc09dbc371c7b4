// Package ngram reads raw Google Books Ngram (v2) unigram records, one
// partition at a time.
package ngram

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dtnitsch/weirdness/pkg/internalerr"
)

// Arity is the n-gram length this package reads. Only unigrams are supported.
const Arity = 1

// Record is one row of a partition file: an n-gram's match and volume counts for one year.
type Record struct {
	Ngram       string
	Year        int
	MatchCount  int64
	VolumeCount int64
}

// Iterator yields the records of one partition. Next returns io.EOF after the
// last record.
type Iterator interface {
	Next() (Record, error)
	Close() error
}

// Source produces the raw records of a partition key (e.g. an initial letter).
type Source interface {
	Records(ctx context.Context, key string) (Iterator, error)
}

// FileName returns the published name of a partition file.
func FileName(language, version, key string) string {
	return fmt.Sprintf("googlebooks-%s-all-%dgram-%s-%s.gz", language, Arity, version, key)
}

// ParseLine parses a tab-separated `ngram year match_count volume_count` row.
func ParseLine(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return Record{}, fmt.Errorf("%w: expected 4 tab-separated fields, got %d", internalerr.ErrMalformedRecord, len(fields))
	}

	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("%w: year %q", internalerr.ErrMalformedRecord, fields[1])
	}
	match, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: match count %q", internalerr.ErrMalformedRecord, fields[2])
	}
	volume, err := strconv.ParseInt(strings.TrimRight(fields[3], "\r"), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: volume count %q", internalerr.ErrMalformedRecord, fields[3])
	}

	return Record{Ngram: fields[0], Year: year, MatchCount: match, VolumeCount: volume}, nil
}

// lineIterator parses records from a line-oriented stream.
type lineIterator struct {
	scanner *bufio.Scanner
	closers []io.Closer
	line    int
}

const maxLineSize = 1024 * 1024

func newLineIterator(r io.Reader, closers ...io.Closer) *lineIterator {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineIterator{scanner: scanner, closers: closers}
}

// NewReaderIterator iterates over the records in r, decompressing when
// gzipped is set. Closing the iterator closes r if it is an io.Closer.
func NewReaderIterator(r io.Reader, gzipped bool) (Iterator, error) {
	var closers []io.Closer
	if c, ok := r.(io.Closer); ok {
		closers = append(closers, c)
	}
	if !gzipped {
		return newLineIterator(r, closers...), nil
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	return newLineIterator(gz, append([]io.Closer{gz}, closers...)...), nil
}

func (it *lineIterator) Next() (Record, error) {
	for it.scanner.Scan() {
		it.line++
		text := it.scanner.Text()
		if text == "" {
			continue
		}
		rec, err := ParseLine(text)
		if err != nil {
			return Record{}, fmt.Errorf("line %d: %w", it.line, err)
		}
		return rec, nil
	}
	if err := it.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("line %d: %w", it.line+1, err)
	}
	return Record{}, io.EOF
}

func (it *lineIterator) Close() error {
	var first error
	for _, c := range it.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
