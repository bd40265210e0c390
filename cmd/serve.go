package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/live627/elkarte.net/internal/app"
	"github.com/live627/elkarte.net/internal/app/errorlog"
	"github.com/live627/elkarte.net/internal/providers/minio"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	archiveSweepEvery = 6 * time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		application, err := app.Bootstrap(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to bootstrap application", zap.Error(err))
			return err
		}
		if application.Redis != nil {
			defer application.Redis.Close() //nolint:errcheck
		}

		addr := ":" + cfg.ServerPort
		srv := &http.Server{
			Addr:              addr,
			Handler:           application.Router.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			application.Hub.Run(gctx)
			return nil
		})

		g.Go(func() error {
			logger.Info("Server started", zap.String("addr", "localhost"+addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if application.Minio != nil {
			g.Go(func() error {
				sweepArchives(gctx, application.Minio, cfg.ArchiveRetention, logger)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			logger.Error("Server stopped with error", zap.Error(err))
			return err
		}
		logger.Info("Server exited gracefully")
		return nil
	},
}

// sweepArchives removes error log archives older than retention until ctx
// is done.
func sweepArchives(ctx context.Context, store *minio.MinioProvider, retention time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(archiveSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteObjectsOlderThan(ctx, errorlog.ArchivePrefix, retention)
			if err != nil {
				logger.Warn("Failed to clean up old error log archives", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("Old error log archives removed", zap.Int("count", n))
			}
		}
	}
}
