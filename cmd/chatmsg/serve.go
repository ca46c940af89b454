package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lojasmm/chatmsg/internal/api"
	"github.com/lojasmm/chatmsg/internal/config"
	"github.com/lojasmm/chatmsg/internal/draft"
	"github.com/lojasmm/chatmsg/internal/logger"
	"github.com/lojasmm/chatmsg/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the compose HTTP service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogJSON); err != nil {
		return err
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	drafts := draft.NewManager()

	// Evict idle drafts.
	go func() {
		ticker := time.NewTicker(cfg.DraftCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			if n := drafts.Cleanup(cfg.DraftMaxAge); n > 0 {
				m.DraftsEvicted.Add(float64(n))
				m.Drafts.Set(float64(drafts.Len()))
				logger.Log.Info("drafts_evicted", zap.Int("count", n))
			}
		}
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(drafts, m, cfg.MaxBodyBytes).Routes(reg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}
	logger.Log.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Log.Info("stopped")
	return nil
}
