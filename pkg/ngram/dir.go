package ngram

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/weirdness/pkg/storage"
)

// Dir reads partition files from a local directory, using the published file
// names. A file stored without its .gz suffix is read as plain text.
type Dir struct {
	Path     string
	Language string
	Version  string
}

func (d *Dir) Records(ctx context.Context, key string) (Iterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &storage.Storage{}
	name := filepath.Join(d.Path, FileName(d.Language, d.Version, key))
	gzipped := true
	if !s.HasFile(name) {
		name = strings.TrimSuffix(name, ".gz")
		gzipped = false
		if !s.HasFile(name) {
			return nil, fmt.Errorf("no file for partition %q in %s: %w", key, d.Path, fs.ErrNotExist)
		}
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open partition %q: %w", key, err)
	}
	return NewReaderIterator(f, gzipped)
}
