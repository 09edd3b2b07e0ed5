package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bitgallery/scanview/internal/api"
	"github.com/bitgallery/scanview/internal/config"
	"github.com/bitgallery/scanview/internal/database"
	"github.com/bitgallery/scanview/internal/model"
	"github.com/bitgallery/scanview/internal/poller"
	"github.com/bitgallery/scanview/internal/queue"
	"github.com/bitgallery/scanview/internal/server"
	"github.com/bitgallery/scanview/internal/version"
	"github.com/bitgallery/scanview/internal/view"
	"github.com/bitgallery/scanview/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/viewer.local.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting viewer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.BaseURL,
		"chain", cfg.Chain.ID,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("viewer exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("viewer stopped")
}

func run(ctx context.Context, cfg *config.ViewerConfig, logger *slog.Logger) error {
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, 500*time.Millisecond),
	)

	listingView := view.New(view.Config{
		FastMissThreshold: cfg.View.FastMissThreshold,
		FullMissThreshold: cfg.View.FullMissThreshold,
		StaleThreshold:    cfg.View.StaleThreshold,
		FingerprintCap:    cfg.View.FingerprintCap,
	}, logger)

	// Optional archive pipeline.
	var (
		events      *queue.Buffer[model.ViewEvent]
		eventWriter *writer.EventWriter
	)
	if cfg.Archive.Enabled {
		logger.Info("connecting to archive database",
			"host", cfg.Archive.Database.Host,
			"database", cfg.Archive.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Archive.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		events = queue.NewBuffer[model.ViewEvent](cfg.Archive.BufferSize)
		eventWriter = writer.NewEventWriter(writer.Config{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
		}, events, pool, logger)
	}

	// Fan merged-view updates out to WebSocket clients and, when the archive
	// is on, to the event writer. The server is assigned below, before the
	// poller starts delivering updates.
	var viewServer *server.Server
	handler := poller.UpdateHandlerFunc(func(snapshot []model.Listing, res view.MergeResult) {
		if res.Changed {
			viewServer.PublishView(snapshot, res.Fingerprint)
		}
		if events != nil {
			for _, ev := range res.Events {
				events.Push(ev)
			}
		}
	})

	listingPoller := poller.New(poller.Config{
		ChainID:          cfg.Chain.ID,
		FastInterval:     cfg.Poller.FastInterval,
		FullInterval:     cfg.Poller.FullInterval,
		FullInitialDelay: cfg.Poller.FullInitialDelay,
		Timeout:          cfg.Poller.Timeout,
		EmptyStreak:      cfg.Poller.EmptyStreak,
	}, apiClient, listingView, handler, logger)

	viewServer = server.New(server.Config{Port: cfg.Server.Port},
		listingView, listingPoller, logger)

	g, gctx := errgroup.WithContext(ctx)

	if eventWriter != nil {
		if err := eventWriter.Start(gctx); err != nil {
			return err
		}
	}
	if err := viewServer.Start(gctx); err != nil {
		return err
	}
	if err := listingPoller.Start(gctx); err != nil {
		return err
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := listingPoller.Stop(shutdownCtx); err != nil {
			logger.Warn("poller stop", "error", err)
		}
		if err := viewServer.Stop(shutdownCtx); err != nil {
			logger.Warn("server stop", "error", err)
		}
		if eventWriter != nil {
			events.Close()
			if err := eventWriter.Stop(shutdownCtx); err != nil {
				logger.Warn("writer stop", "error", err)
			}
		}
		return gctx.Err()
	})

	logger.Info("viewer running",
		"instance_id", cfg.Instance.ID,
		"listings_url", fmt.Sprintf("http://localhost:%d/listings", cfg.Server.Port),
	)

	return g.Wait()
}
