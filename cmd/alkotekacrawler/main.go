// Package main wires together the alkoteka catalog crawler binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pubsubapi "cloud.google.com/go/pubsub"
	gcsapi "cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/pricepulse/alkoteka-crawler/internal/api"
	gcsarchive "github.com/pricepulse/alkoteka-crawler/internal/archive/gcs"
	localarchive "github.com/pricepulse/alkoteka-crawler/internal/archive/local"
	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
	"github.com/pricepulse/alkoteka-crawler/internal/clock/system"
	"github.com/pricepulse/alkoteka-crawler/internal/config"
	"github.com/pricepulse/alkoteka-crawler/internal/dispatcher"
	collyfetcher "github.com/pricepulse/alkoteka-crawler/internal/fetcher/colly"
	"github.com/pricepulse/alkoteka-crawler/internal/hash/sha256"
	idgen "github.com/pricepulse/alkoteka-crawler/internal/id/uuid"
	"github.com/pricepulse/alkoteka-crawler/internal/logging"
	"github.com/pricepulse/alkoteka-crawler/internal/orchestrator"
	"github.com/pricepulse/alkoteka-crawler/internal/progress"
	"github.com/pricepulse/alkoteka-crawler/internal/progress/sinks"
	pubsubpublisher "github.com/pricepulse/alkoteka-crawler/internal/publisher/pubsub"
	queuememory "github.com/pricepulse/alkoteka-crawler/internal/queue/memory"
	"github.com/pricepulse/alkoteka-crawler/internal/sink"
	"github.com/pricepulse/alkoteka-crawler/internal/sink/jsonl"
	postgressink "github.com/pricepulse/alkoteka-crawler/internal/sink/postgres"
	"github.com/pricepulse/alkoteka-crawler/internal/worker"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("crawl run failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	categories, err := cfg.Categories()
	if err != nil {
		return err
	}

	runID, err := idgen.NewGenerator().NewRawID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	logger = logger.With(zap.String("run_id", runID.String()))

	clock := system.New()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init prometheus sink: %w", err)
	}
	store := sinks.NewStoreSink()
	hub := progress.NewHub(progress.Config{Logger: logger.Named("progress")},
		sinks.NewLogSink(logger.Named("events")),
		promSink,
		store,
	)

	recordSink, cleanupSink, err := buildRecordSink(ctx, cfg, runID.String())
	if err != nil {
		return err
	}
	defer cleanupSink()

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		return err
	}

	publisher, stopPublisher, err := buildPublisher(ctx, cfg, runID.String())
	if err != nil {
		return err
	}
	defer stopPublisher()

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawl.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	orch := orchestrator.New(orchestrator.Config{
		BaseURL:  cfg.API.BaseURL,
		CityUUID: cfg.API.CityUUID,
		PerPage:  cfg.API.PerPage,
	})
	queue := queuememory.NewQueue(cfg.Crawl.QueueDepth)

	workerCfg := worker.Config{
		RunID:         progress.UUIDToBytes(runID),
		Delay:         cfg.Delay(),
		Topic:         cfg.PubSub.TopicName,
		ArchivePrefix: cfg.Archive.Prefix,
	}
	var workers []*worker.Worker
	for i := 0; i < cfg.Crawl.Concurrency; i++ {
		workers = append(workers, worker.New(
			queue,
			fetcher,
			orch,
			recordSink,
			archive,
			publisher,
			sha256.New(),
			clock,
			hub,
			workerCfg,
			logger.Named("worker").With(zap.Int("index", i)),
		))
	}
	dispatch := dispatcher.New(queue, workers)

	srv := startStatusServer(cfg, store, registry, logger, func() { queue.Close() })

	start := clock.Now()
	hub.Emit(progress.Event{
		RunID: workerCfg.RunID,
		TS:    start,
		Stage: progress.StageRunStart,
	})
	logger.Info("crawl started",
		zap.Int("categories", len(categories)),
		zap.Int("concurrency", cfg.Crawl.Concurrency),
	)

	if err := dispatch.Seed(ctx, orch.Seed(categories)); err != nil {
		return err
	}
	dispatch.Run(ctx)

	hub.Emit(progress.Event{
		RunID: workerCfg.RunID,
		TS:    clock.Now(),
		Stage: progress.StageRunDone,
		Dur:   clock.Now().Sub(start),
	})
	logger.Info("crawl finished", zap.Duration("dur", clock.Now().Sub(start)))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("status server shutdown error", zap.Error(err))
		}
	}
	if err := hub.Close(shutdownCtx); err != nil {
		logger.Warn("progress hub close error", zap.Error(err))
	}
	return nil
}

func buildRecordSink(ctx context.Context, cfg config.Config, runID string) (catalog.RecordSink, func(), error) {
	fileSink, err := jsonl.New(cfg.Output.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init output sink: %w", err)
	}
	outputs := []catalog.RecordSink{fileSink}

	if cfg.DB.DSN != "" {
		store, err := postgressink.NewRecordStore(ctx, postgressink.Config{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			RunID:    runID,
			MaxConns: int32(cfg.DB.MaxOpenConns),
		})
		if err != nil {
			_ = fileSink.Close()
			return nil, nil, fmt.Errorf("init record store: %w", err)
		}
		outputs = append(outputs, store)
	}

	multi := sink.NewMulti(outputs...)
	cleanup := func() {
		if err := multi.Close(); err != nil {
			zap.L().Warn("record sink close error", zap.Error(err))
		}
	}
	return multi, cleanup, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (catalog.Archive, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	if cfg.Archive.GCSBucket != "" {
		client, err := gcsapi.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		archive, err := gcsarchive.New(client, gcsarchive.Config{Bucket: cfg.Archive.GCSBucket})
		if err != nil {
			return nil, fmt.Errorf("init gcs archive: %w", err)
		}
		return archive, nil
	}
	archive, err := localarchive.New(localarchive.Config{BaseDir: cfg.Archive.Dir})
	if err != nil {
		return nil, fmt.Errorf("init local archive: %w", err)
	}
	return archive, nil
}

func buildPublisher(ctx context.Context, cfg config.Config, runID string) (catalog.Publisher, func(), error) {
	if cfg.PubSub.ProjectID == "" || cfg.PubSub.TopicName == "" {
		return nil, func() {}, nil
	}
	client, err := pubsubapi.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("init pubsub client: %w", err)
	}
	pub := pubsubpublisher.New(client, runID)
	stop := func() {
		pub.Stop()
		_ = client.Close()
	}
	return pub, stop, nil
}

func startStatusServer(
	cfg config.Config,
	store *sinks.StoreSink,
	registry *prometheus.Registry,
	logger *zap.Logger,
	onFailure func(),
) *http.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	apiServer := api.NewServer(store, registry, logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("status server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server error", zap.Error(err))
			onFailure()
		}
	}()
	return srv
}
