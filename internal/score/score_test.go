package score

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/caching"
	"github.com/dtnitsch/weirdness/pkg/fetcher"
	"github.com/dtnitsch/weirdness/pkg/internalerr"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoaderText(t *testing.T) {
	l := &Loader{}
	got, err := l.Load(context.Background(), TextSource{Text: "cell cell"})
	if err != nil || got != "cell cell" {
		t.Errorf("Load() = %q, %v", got, err)
	}

	for _, src := range []TextSource{{}, {Text: "a", File: "b"}} {
		if _, err := l.Load(context.Background(), src); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("Load(%+v) error = %v, want ErrInvalidInput", src, err)
		}
	}
}

func TestLoaderFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(plain, []byte("<b>kept as is</b>"), 0644); err != nil {
		t.Fatal(err)
	}
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte("<html><body><script>x()</script><p>protein folding</p></body></html>"), 0644); err != nil {
		t.Fatal(err)
	}

	l := &Loader{}
	got, err := l.Load(context.Background(), TextSource{File: plain})
	if err != nil || got != "<b>kept as is</b>" {
		t.Errorf("Load(txt) = %q, %v", got, err)
	}
	got, err = l.Load(context.Background(), TextSource{File: page})
	if err != nil {
		t.Fatalf("Load(html) error = %v", err)
	}
	if !strings.Contains(got, "protein folding") || strings.Contains(got, "x()") {
		t.Errorf("Load(html) = %q", got)
	}
}

func TestLoaderURLUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, "<html><body><p>enzyme kinetics</p></body></html>")
	}))
	defer srv.Close()

	cache, err := caching.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	l := &Loader{Fetcher: fetcher.NewFetcher(), Cache: cache, Logger: quietLogger()}

	for i := 0; i < 2; i++ {
		got, err := l.Load(context.Background(), TextSource{URL: srv.URL + "/page"})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !strings.Contains(got, "enzyme kinetics") {
			t.Errorf("Load() = %q", got)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestLoaderURLHeaderCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-7")
		_, _ = w.Write([]byte("<html><body><p>\xe1\xe2\xe3 culture</p></body></html>"))
	}))
	defer srv.Close()

	cache, err := caching.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	l := &Loader{Fetcher: fetcher.NewFetcher(), Cache: cache, Logger: quietLogger()}

	for i := 0; i < 2; i++ {
		got, err := l.Load(context.Background(), TextSource{URL: srv.URL})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !strings.Contains(got, "αβγ culture") {
			t.Errorf("Load() #%d = %q, want header charset applied", i, got)
		}
	}
}

func TestScore(t *testing.T) {
	general := models.NewGeneralTable()
	general.Set("the", 50)
	general.Set("cell", 4)

	cfg := &models.ScoreConfig{TopN: 10, MinWeirdness: 1.0}
	scores, err := Score("The cell, the CELL and the mitochondria.", general, cfg, quietLogger())
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Score() = %+v, want 3 words above threshold", scores)
	}
	if scores[0].Word != "and" || scores[1].Word != "mitochondria" || scores[2].Word != "cell" {
		t.Errorf("Score() order = %+v", scores)
	}
	for _, s := range scores {
		if s.Word == "the" {
			t.Errorf("common word scored above threshold: %+v", s)
		}
	}
}

func TestPrint(t *testing.T) {
	scores := []models.WeirdnessScore{{Word: "cell", Score: 15.3}, {Word: "protein", Score: 2}}

	var buf bytes.Buffer
	if err := Print(&buf, scores, "text"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "cell: 15.30\nprotein: 2.00\n" {
		t.Errorf("Print(text) = %q", buf.String())
	}

	buf.Reset()
	if err := Print(&buf, scores, "yaml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "- word: cell\n  score: 15.3\n") {
		t.Errorf("Print(yaml) = %q", buf.String())
	}
}
