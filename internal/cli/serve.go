package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/sqlflash/internal/api"
	"github.com/vytor/sqlflash/internal/jobs"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr != "" {
				opts.cfg.Addr = addr
			}
			return serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides ADDR)")
	return cmd
}

func serve(ctx context.Context, opts *options) error {
	cfg := opts.cfg
	log := logger.FromContext(ctx)

	log.Info("===========================================")
	log.Info("SQLFlash Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("llm_provider=%s", cfg.LLMProvider)
	log.Debug("grading_worker_count=%d", cfg.GradingWorkerCount)
	log.Debug("grading_queue_size=%d", cfg.GradingQueueSize)
	log.Debug("generation_worker_count=%d", cfg.GenerationWorkerCount)
	log.Debug("generation_queue_size=%d", cfg.GenerationQueueSize)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWorkers()

	a, err := newApp(workerCtx, cfg, true)
	if err != nil {
		log.Error("failed to initialize: %v", err)
		return err
	}
	defer a.close(ctx)

	srv := &api.Server{
		FlashcardService:  a.flashcards,
		AssessmentService: a.assessment,
		DB:                a.db,
	}
	if a.cache != nil {
		srv.Cache = a.cache
	}

	var generationPool *worker.Pool
	if a.generator != nil {
		generationPool = worker.NewPool("generation", cfg.GenerationWorkerCount, cfg.GenerationQueueSize)
		generationPool.Start(workerCtx)
		srv.GenerationQueue = jobs.NewWorkerQueue(generationPool, a.generator)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server error: %v", err)
			return err
		}
	case <-ctx.Done():
		log.Info("received shutdown signal, initiating graceful shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	cancelWorkers()
	if generationPool != nil {
		log.Debug("stopping generation pool")
		generationPool.Stop()
	}

	log.Info("===========================================")
	log.Info("SQLFlash Server Stopped")
	log.Info("===========================================")
	return nil
}
