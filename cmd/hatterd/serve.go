package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omahs/claims-hatter/internal/config"
	"github.com/omahs/claims-hatter/internal/events"
	"github.com/omahs/claims-hatter/internal/factory"
	"github.com/omahs/claims-hatter/internal/hats"
	"github.com/omahs/claims-hatter/internal/hooks"
	"github.com/omahs/claims-hatter/internal/presence"
	"github.com/omahs/claims-hatter/internal/server"
	"github.com/omahs/claims-hatter/internal/store/postgres"
	hattersync "github.com/omahs/claims-hatter/internal/sync"
	"github.com/spf13/cobra"
	healthv1 "google.golang.org/grpc/health/grpc_health_v1"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the hatter server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create a client connection.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Connect to Postgres.
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (HATTER_NATS_URL not set)")
		}

		// Activity roster with background reaper.
		tracker := presence.New()
		tracker.StartReaper(nil)

		// Registry: remote HTTP, or the in-process dev registry.
		var dial factory.Dialer
		var binder factory.StatusBinder
		if cfg.RegistryURL != "" {
			dial = func(identity string) hats.Registry {
				return hats.NewClient(cfg.RegistryURL, cfg.AuthToken)
			}
			logger.Info("using remote registry", "url", cfg.RegistryURL)
		} else {
			memory := hats.NewMemory(publisher, logger)
			if cfg.RegistrySeed != "" {
				seed, err := hats.LoadSeed(cfg.RegistrySeed)
				if err != nil {
					store.Close()
					return err
				}
				if err := seed.Apply(memory); err != nil {
					store.Close()
					return err
				}
				logger.Info("registry seed applied", "path", cfg.RegistrySeed)
			}
			dial = memory.Client
			binder = memory
			logger.Info("using in-process dev registry")
		}

		// Bring up the gate manager and rehydrate persisted gates.
		manager := factory.New(factory.Config{
			Store:     store,
			Dial:      dial,
			Publisher: publisher,
			Binder:    binder,
			Presence:  tracker,
			Identity:  cfg.Identity,
			Logger:    logger,
		})
		if err := manager.Load(context.Background()); err != nil {
			store.Close()
			return err
		}

		// Create server components.
		hatterServer := server.NewHatterServer(manager, tracker)
		grpcServer, healthServer := server.NewGRPCServer(cfg.AuthToken)
		healthServer.SetServingStatus("", healthv1.HealthCheckResponse_SERVING)

		// Start gRPC listener.
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			publisher.Close()
			store.Close()
			return err
		}

		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		// Start HTTP server.
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: hatterServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start sync scheduler if any destinations are configured.
		var scheduler *hattersync.Scheduler
		if cfg.SyncInterval > 0 {
			var dests []hattersync.Destination

			if cfg.SyncS3Bucket != "" {
				s3Dest, err := hattersync.NewS3Destination(
					context.Background(),
					cfg.SyncS3Bucket,
					cfg.SyncS3Key,
					cfg.SyncS3Region,
					cfg.SyncS3Endpoint,
				)
				if err != nil {
					logger.Error("failed to create S3 sync destination", "err", err)
				} else {
					dests = append(dests, s3Dest)
					logger.Info("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "key", cfg.SyncS3Key)
				}
			}

			if cfg.SyncGitRepo != "" {
				gitDest := hattersync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch)
				dests = append(dests, gitDest)
				logger.Info("sync git destination enabled", "repo", cfg.SyncGitRepo, "file", cfg.SyncGitFile)
			}

			if len(dests) > 0 {
				scheduler = hattersync.NewScheduler(store, dests, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
			}
		}

		// Watch registry transfer events if NATS is available.
		var watchCancel context.CancelFunc
		if cfg.NATSURL != "" {
			watchSub, err := events.NewNATSSubscriber(cfg.NATSURL)
			if err != nil {
				logger.Error("failed to create registry watch subscriber", "err", err)
			} else {
				watcher := hooks.NewWatcher(store, logger)
				var watchCtx context.Context
				watchCtx, watchCancel = context.WithCancel(context.Background())
				go func() {
					if err := watcher.StartSubscriber(watchCtx, watchSub); err != nil {
						logger.Error("registry watcher error", "err", err)
					}
					watchSub.Close()
				}()
				logger.Info("registry watcher started")
			}
		}

		// Log startup info.
		logger.Info("hatter server started",
			"grpc_addr", cfg.GRPCAddr,
			"http_addr", cfg.HTTPAddr,
		)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		healthServer.Shutdown()

		if watchCancel != nil {
			watchCancel()
			logger.Info("registry watcher stopped")
		}

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		tracker.Stop()
		logger.Info("activity reaper stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
