package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/weirdness/internal/common"
	"github.com/dtnitsch/weirdness/internal/score"
	"github.com/dtnitsch/weirdness/pkg/reftable"
)

func ServeAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	config, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	cfg := &config.Score
	score.ApplyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	general, stats, err := reftable.Load(cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to load reference table: %w", err)
	}
	logger.Info("Loaded reference table", "path", cfg.Table, "words", general.Len(), "skipped", stats.Skipped)

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           NewServer(general, *cfg, c.Duration("cache-ttl"), logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
