// Package serve exposes weirdness scoring over HTTP.
package serve

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dtnitsch/weirdness/internal/score"
	"github.com/dtnitsch/weirdness/models"
	"github.com/dtnitsch/weirdness/pkg/internalerr"
)

const maxBodyBytes = 8 << 20

// ScoreRequest is the body of POST /score. Zero options fall back to the
// server defaults.
type ScoreRequest struct {
	Text          string   `json:"text"`
	TopN          *int     `json:"top_n,omitempty"`
	MinWeirdness  *float64 `json:"min_weirdness,omitempty"`
	DropStopwords *bool    `json:"drop_stopwords,omitempty"`
}

// ScoreResponse is returned by POST /score.
type ScoreResponse struct {
	Scores []models.WeirdnessScore `json:"scores"`
	Cached bool                    `json:"cached"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server scores text against one reference table loaded at startup.
type Server struct {
	general  *models.GeneralTable
	defaults models.ScoreConfig
	cache    *gocache.Cache
	logger   *slog.Logger
}

// NewServer returns a server whose responses are cached for ttl.
func NewServer(general *models.GeneralTable, defaults models.ScoreConfig, ttl time.Duration, logger *slog.Logger) *Server {
	return &Server{
		general:  general,
		defaults: defaults,
		cache:    gocache.New(ttl, 2*ttl),
		logger:   logger,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/score", s.handleScore)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"words": s.general.Len()})
	})
	return mux
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	cfg := s.defaults
	if req.TopN != nil {
		cfg.TopN = *req.TopN
	}
	if req.MinWeirdness != nil {
		cfg.MinWeirdness = *req.MinWeirdness
	}
	if req.DropStopwords != nil {
		cfg.DropStopwords = *req.DropStopwords
	}

	key := cacheKey(req.Text, cfg)
	if cached, ok := s.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, ScoreResponse{Scores: cached.([]models.WeirdnessScore), Cached: true})
		return
	}

	scores, err := score.Score(req.Text, s.general, &cfg, s.logger)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, internalerr.ErrInvalidInput) {
			status = http.StatusUnprocessableEntity
		}
		s.logger.Warn("score request failed", "error", err, "status", status)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	s.cache.Set(key, scores, gocache.DefaultExpiration)
	writeJSON(w, http.StatusOK, ScoreResponse{Scores: scores})
}

func cacheKey(text string, cfg models.ScoreConfig) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%g|%t|", cfg.TopN, cfg.MinWeirdness, cfg.DropStopwords)
	h.Write([]byte(text))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
