// Command server runs the file manager HTTP API.
//
// @title                       File Manager API
// @version                     1.0
// @description                 Folder tree and file storage with password plus face liveness login.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/api"
	"github.com/Sirpyerre/file-manager/internal/api/handler"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
	"github.com/Sirpyerre/file-manager/internal/core/service"
	"github.com/Sirpyerre/file-manager/internal/infrastructure/blob"
	"github.com/Sirpyerre/file-manager/internal/infrastructure/config"
	mongodb "github.com/Sirpyerre/file-manager/internal/infrastructure/db/mongo"
	redisdb "github.com/Sirpyerre/file-manager/internal/infrastructure/db/redis"
	"github.com/Sirpyerre/file-manager/internal/infrastructure/events"
	"github.com/Sirpyerre/file-manager/internal/infrastructure/face"
	"github.com/Sirpyerre/file-manager/internal/infrastructure/queue"
	"github.com/Sirpyerre/file-manager/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "file-manager",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	checks := map[string]handler.DependencyCheck{"mongodb": handler.MongoCheck(db)}

	// --- Redis (optional) ---
	var revocations ports.RevocationStore
	if redisCfg := (redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB}); redisCfg.Enabled() {
		rdb, err := redisdb.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		revocations = redisdb.NewRevocationStore(rdb)
		checks["redis"] = handler.RedisCheck(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, tokens cannot be revoked before expiry")
	}

	// --- Blob store ---
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

	// --- File events (optional) ---
	var publisher ports.EventPublisher = events.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p := events.NewPublisher(cfg.RabbitMQ.URL, events.Topology{
			Exchange:    cfg.RabbitMQ.Exchange,
			OrphanQueue: cfg.RabbitMQ.OrphanQueue,
		}, logger.Component("events"))
		defer p.Close()
		publisher = p
	}

	// --- Liveness ---
	encoder := face.NewClient(cfg.Face.EncoderURL, cfg.Face.Timeout)
	verifier := queue.NewVerifierPool(cfg.Face.Workers,
		service.NewLivenessService(encoder, cfg.Face.Threshold), logger.Component("liveness"))
	verifier.Start(ctx)

	// --- Services ---
	users := mongodb.NewUserRepository(db)
	folders := mongodb.NewFolderRepository(db)
	files := mongodb.NewFileRepository(db)

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, revocations, logger.Component("tokens"))
	authService := service.NewAuthService(users, blobs, verifier, tokenService, logger.Component("auth"))
	folderService := service.NewFolderService(folders, files, logger.Component("folders"))
	fileService := service.NewFileService(files, folders, blobs, publisher, logger.Component("files"))

	if _, err := folderService.EnsureRootExists(ctx); err != nil {
		return err
	}

	// --- Reconciliation ---
	reconciler := service.NewReconciler(files, blobs, cfg.Reconcile.PendingTTL, logger.Component("reconciler"))
	go queue.NewSweeper(reconciler, cfg.Reconcile.Interval, logger.Component("sweeper")).Run(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:      authService,
		Tokens:    tokenService,
		Folders:   folderService,
		Files:     fileService,
		Checks:    checks,
		Log:       logger.Component("http"),
		BodyLimit: cfg.MaxUploadSize,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
