package models

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dtnitsch/weirdness/pkg/internalerr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Build.Output != "ENG_GoogleUnigrams.csv" {
		t.Errorf("Output = %q", cfg.Build.Output)
	}
	if len(cfg.Build.Keys) != 26 || cfg.Build.Keys[0] != "a" || cfg.Build.Keys[25] != "z" {
		t.Errorf("Keys = %v", cfg.Build.Keys)
	}
	if err := cfg.Build.Validate(); err != nil {
		t.Errorf("default build config invalid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("build:\n  language: fre\n  keys: [a, b]\n  workers: 3\nscore:\n  table: FRE_GoogleUnigrams.csv\n  top_n: 5\ndb: runs.db\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Build.Language != "fre" || cfg.Build.WorkerCount != 3 || !reflect.DeepEqual(cfg.Build.Keys, []string{"a", "b"}) {
		t.Errorf("Build = %+v", cfg.Build)
	}
	if cfg.Build.Version != DefaultVersion || cfg.Build.Marker != DefaultMarker {
		t.Errorf("unset fields lost their defaults: %+v", cfg.Build)
	}
	if cfg.Score.TopN != 5 || cfg.Score.MinWeirdness != DefaultMinWeirdness || cfg.DB != "runs.db" {
		t.Errorf("Score = %+v, DB = %q", cfg.Score, cfg.DB)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() of a missing file should fail")
	}
}

func TestBuildConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BuildConfig)
	}{
		{"no keys", func(b *BuildConfig) { b.Keys = nil }},
		{"no language", func(b *BuildConfig) { b.Language = "" }},
		{"empty marker", func(b *BuildConfig) { b.Marker = "" }},
		{"negative workers", func(b *BuildConfig) { b.WorkerCount = -1 }},
		{"no output", func(b *BuildConfig) { b.Output = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := DefaultConfig().Build
			tt.mutate(&b)
			if err := b.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	s := DefaultConfig().Score
	if err := s.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("ScoreConfig.Validate() without table error = %v", err)
	}
}
