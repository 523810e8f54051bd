package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/habitgrid/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/habitgrid/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habitgrid/internal/core/services"
	"github.com/comitanigiacomo/habitgrid/internal/core/workers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the habit boards over HTTP",
	Long: `Starts the HTTP API on PORT. Without HABITS_TOKEN_SECRET the board is
picked with the X-Habit-Board header; with it, by the bearer token subject.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to storage...", zap.String("store", cfg.Store))

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("critical: failed to open storage: %w", err)
	}
	defer b.Close()

	var notifier workers.Notifier = workers.NewLogNotifier(logger)
	if b.redis != nil {
		notifier = cache.NewRedisNotifier(b.redis, cache.CelebrationChannel)
	}

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	worker := workers.NewCelebrationWorker(notifier, logger)
	worker.Start(workerCtx)
	defer func() {
		cancelWorker()
		worker.Wait()
	}()

	registry := services.NewBoardRegistry(b.store, worker, logger)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler: adapterHTTP.NewHabitHandler(registry, logger),
		StatsHandler: adapterHTTP.NewStatsHandler(services.NewStatsService(registry)),
		TokenService: newTokenService(),
		Store:        b.pinger,
		Redis:        b.redis,
		RateLimit:    cfg.RateLimit,
		Logger:       logger,
		StartTime:    startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("habit server running", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("critical server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Stop signal received. Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully.")
	return nil
}
