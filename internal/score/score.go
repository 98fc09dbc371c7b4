package score

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/analytics"
	"github.com/dtnitsch/weirdness/pkg/caching"
	"github.com/dtnitsch/weirdness/pkg/detector"
	"github.com/dtnitsch/weirdness/pkg/extractor"
	"github.com/dtnitsch/weirdness/pkg/fetcher"
	"github.com/dtnitsch/weirdness/pkg/internalerr"
	"github.com/dtnitsch/weirdness/pkg/storage"
	"github.com/dtnitsch/weirdness/pkg/weirdness"
)

// TextSource names where specialist text comes from. Exactly one field is set.
type TextSource struct {
	Text string
	File string
	URL  string
}

// Loader reads specialist text. Cache may be nil.
type Loader struct {
	Fetcher *fetcher.Fetcher
	Cache   *caching.Cache
	Logger  *slog.Logger
}

// Load returns the plain text of src. HTML files and pages are reduced to
// their readable content.
func (l *Loader) Load(ctx context.Context, src TextSource) (string, error) {
	set := 0
	for _, s := range []string{src.Text, src.File, src.URL} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return "", fmt.Errorf("%w: exactly one of text, file or url is required", internalerr.ErrInvalidInput)
	}

	switch {
	case src.Text != "":
		return src.Text, nil
	case src.File != "":
		data, err := (&storage.Storage{}).ReadFile(src.File)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", src.File, err)
		}
		ext := strings.ToLower(filepath.Ext(src.File))
		if ext == ".html" || ext == ".htm" {
			html, err := extractor.Decode(data, "")
			if err != nil {
				return "", err
			}
			article, err := extractor.Extract("file://"+filepath.ToSlash(src.File), html)
			if err != nil {
				return "", err
			}
			return article.Text, nil
		}
		return string(data), nil
	default:
		data, err := l.fetch(ctx, src.URL)
		if err != nil {
			return "", err
		}
		article, err := extractor.Extract(src.URL, string(data))
		if err != nil {
			return "", err
		}
		return article.Text, nil
	}
}

// fetch returns the page at url decoded to UTF-8. Pages are cached after
// decoding, so a cached body needs no charset of its own.
func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	f := l.Fetcher
	if f == nil {
		f = fetcher.NewFetcher()
	}
	fetchUTF8 := func(ctx context.Context, url string) ([]byte, error) {
		page, err := f.GetPage(ctx, url)
		if err != nil {
			return nil, err
		}
		html, err := extractor.Decode(page.Body, page.ContentType)
		if err != nil {
			return nil, err
		}
		return []byte(html), nil
	}
	if l.Cache == nil {
		return fetchUTF8(ctx, url)
	}
	data, hit, err := l.Cache.GetOrFetch(ctx, url, fetchUTF8)
	if err != nil && data == nil {
		return nil, err
	}
	if err != nil && l.Logger != nil {
		l.Logger.Warn("failed to cache page", "url", url, "error", err)
	}
	if l.Logger != nil {
		l.Logger.Debug("Fetched specialist page", "url", url, "cache_hit", hit, "bytes", len(data))
	}
	return data, nil
}

// Score ranks the words of text against general. A language mismatch between
// text and the reference corpus is logged, not rejected.
func Score(text string, general *models.GeneralTable, cfg *models.ScoreConfig, logger *slog.Logger) ([]models.WeirdnessScore, error) {
	specialist := analytics.WordFrequency(text, analytics.Options{DropStopwords: cfg.DropStopwords})
	logger.Debug("Counted specialist words", "unique_words", specialist.Len(), "total", specialist.Total())

	if cfg.Language != "" {
		detected, mismatch, err := detector.Mismatch(text, cfg.Language)
		if err != nil {
			logger.Warn("language check skipped", "error", err)
		} else if mismatch {
			logger.Warn("Specialist text language differs from reference corpus", "detected", detected, "corpus", cfg.Language)
		}
	}

	return weirdness.Score(specialist, general, cfg.TopN, cfg.MinWeirdness)
}

// Print writes scores as "word: score" lines, or as YAML.
func Print(w io.Writer, scores []models.WeirdnessScore, format string) error {
	if format == "yaml" {
		data, err := yaml.Marshal(scores)
		if err != nil {
			return fmt.Errorf("failed to marshal scores: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	for _, s := range scores {
		if _, err := fmt.Fprintf(w, "%s: %.2f\n", s.Word, s.Score); err != nil {
			return err
		}
	}
	return nil
}
