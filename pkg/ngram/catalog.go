package ngram

import (
	"context"
	"fmt"
	"path"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/weirdness/pkg/fetcher"
	"github.com/dtnitsch/weirdness/pkg/internalerr"
)

// DefaultIndexURL lists every published v2 dataset file.
const DefaultIndexURL = "http://storage.googleapis.com/books/ngrams/books/datasetsv2.html"

// Catalog discovers which partition keys exist for a language and version by
// reading the links on the dataset index page.
type Catalog struct {
	IndexURL string
	fetcher  *fetcher.Fetcher
}

func NewCatalog(f *fetcher.Fetcher, indexURL string) *Catalog {
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	return &Catalog{IndexURL: indexURL, fetcher: f}
}

// Keys returns the partition keys in page order, without duplicates.
func (c *Catalog) Keys(ctx context.Context, language, version string) ([]string, error) {
	doc, err := c.fetcher.GetHtml(ctx, c.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset index: %w", err)
	}
	keys := KeysFromDocument(doc, language, version)
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no %dgram partitions for %s/%s at %s", internalerr.ErrNotFound, Arity, language, version, c.IndexURL)
	}
	return keys, nil
}

// KeysFromDocument extracts partition keys from the links in doc.
func KeysFromDocument(doc *goquery.Document, language, version string) []string {
	pattern := regexp.MustCompile(
		"^" + regexp.QuoteMeta(fmt.Sprintf("googlebooks-%s-all-%dgram-%s-", language, Arity, version)) + `([^./]+)\.gz$`)

	seen := make(map[string]struct{})
	var keys []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m := pattern.FindStringSubmatch(path.Base(href))
		if m == nil {
			return
		}
		if _, dup := seen[m[1]]; dup {
			return
		}
		seen[m[1]] = struct{}{}
		keys = append(keys, m[1])
	})
	return keys
}
