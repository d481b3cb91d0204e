// Command reconciler removes what partially failed file writes leave behind:
// blobs named by file.orphaned events and file entries stuck in pending or
// deleting.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/api/metrics"
	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/service"
	"github.com/Sirpyerre/file-manager/internal/infrastructure/blob"
	"github.com/Sirpyerre/file-manager/internal/infrastructure/config"
	mongodb "github.com/Sirpyerre/file-manager/internal/infrastructure/db/mongo"
	"github.com/Sirpyerre/file-manager/internal/infrastructure/events"
	"github.com/Sirpyerre/file-manager/internal/infrastructure/queue"
	"github.com/Sirpyerre/file-manager/pkg/logger"
)

func main() {
	once := flag.Bool("once", false, "run a single stale-entry sweep and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "file-manager-reconciler",
	})

	if err := run(ctx, cfg, *once, log); err != nil {
		log.Fatal().Err(err).Msg("reconciler stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, once bool, log zerolog.Logger) error {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	blobs, err := blob.Open(ctx, blob.Options{
		Backend:      cfg.Blob.Backend,
		GridFSBucket: cfg.Blob.GridFSBucket,
		S3: blob.S3Config{
			Bucket:    cfg.Blob.S3Bucket,
			Prefix:    cfg.Blob.S3Prefix,
			Region:    cfg.Blob.S3Region,
			Endpoint:  cfg.Blob.S3Endpoint,
			AccessKey: cfg.Blob.S3AccessKey,
			SecretKey: cfg.Blob.S3SecretKey,
			PathStyle: cfg.Blob.S3PathStyle,
		},
	}, db)
	if err != nil {
		return err
	}

	reconciler := service.NewReconciler(mongodb.NewFileRepository(db), blobs,
		cfg.Reconcile.PendingTTL, logger.Component("reconciler"))

	if once {
		n, err := reconciler.SweepStale(ctx)
		if err != nil {
			return err
		}
		metrics.ReconcileRemovedTotal.WithLabelValues("stale_entry").Add(float64(n))
		log.Info().Int("removed", n).Msg("sweep finished")
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.NewSweeper(reconciler, cfg.Reconcile.Interval, logger.Component("sweeper")).Run(ctx)
	}()

	if cfg.RabbitMQ.URL == "" {
		log.Warn().Msg("RABBITMQ_URL not set, orphaned blobs are not consumed")
		wg.Wait()
		return nil
	}

	consumer := events.NewConsumer(cfg.RabbitMQ.URL, events.Topology{
		Exchange:    cfg.RabbitMQ.Exchange,
		OrphanQueue: cfg.RabbitMQ.OrphanQueue,
	}, logger.Component("consumer"))
	err = consumer.Run(ctx, func(ctx context.Context, ev domain.FileEvent) error {
		if err := reconciler.HandleOrphan(ctx, ev); err != nil {
			return err
		}
		metrics.ReconcileRemovedTotal.WithLabelValues("orphan_blob").Inc()
		return nil
	})
	wg.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
