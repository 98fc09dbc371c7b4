package ngram

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtnitsch/weirdness/pkg/fetcher"
)

// DefaultBaseURL hosts the published partition files.
const DefaultBaseURL = "http://storage.googleapis.com/books/ngrams/books"

// GoogleBooks streams partition files over HTTP.
type GoogleBooks struct {
	BaseURL  string
	Language string
	Version  string
	fetcher  *fetcher.Fetcher
}

// NewGoogleBooks returns a source for language and version. An empty baseURL
// uses DefaultBaseURL.
func NewGoogleBooks(f *fetcher.Fetcher, baseURL, language, version string) *GoogleBooks {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GoogleBooks{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Language: language,
		Version:  version,
		fetcher:  f,
	}
}

// URL returns the download location of a partition.
func (g *GoogleBooks) URL(key string) string {
	return g.BaseURL + "/" + FileName(g.Language, g.Version, key)
}

func (g *GoogleBooks) Records(ctx context.Context, key string) (Iterator, error) {
	body, err := g.fetcher.Open(ctx, g.URL(key))
	if err != nil {
		return nil, fmt.Errorf("failed to download partition %q: %w", key, err)
	}
	return NewReaderIterator(body, true)
}
