package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	v1Http "github.com/DRSN-tech/wardrobe-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/wardrobe-backend/internal/infrastructure/imgproc"
	"github.com/DRSN-tech/wardrobe-backend/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/wardrobe-backend/internal/infrastructure/minio"
	"github.com/DRSN-tech/wardrobe-backend/internal/infrastructure/rembg"
	s3Repo "github.com/DRSN-tech/wardrobe-backend/internal/repository/minio"
	"github.com/DRSN-tech/wardrobe-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/wardrobe-backend/internal/repository/pgdb/converter"
	qdrantRepo "github.com/DRSN-tech/wardrobe-backend/internal/repository/qdrant"
	"github.com/DRSN-tech/wardrobe-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/wardrobe-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/clients"
	"github.com/DRSN-tech/wardrobe-backend/pkg/closer"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/DRSN-tech/wardrobe-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	shutdownTimeout = 10 * time.Second
	forcedTimeout   = 2 * time.Second
)

// Run собирает зависимости и запускает сервис. Ресурсы регистрируются
// в closer по мере создания и закрываются в обратном порядке.
func Run() {
	logger := logger.NewSlogLogger()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	c := closer.NewCloser(forcedTimeout)

	db, err := initPGDB(logger, cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize database")
		os.Exit(1)
	}
	c.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	itemConv := pgdbConv.NewItemConverter()
	outboxConv := pgdbConv.NewOutboxEventConverter()
	cacheConv := redisConv.NewWardrobeItemConverter()

	itemRepo := pgdb.NewItemRepo(db.Pool, itemConv)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, outboxConv)

	minioClient, err := clients.NewMinIOClient(cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		os.Exit(1)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		logger.Errorf(err, "failed to initialize MinIO bucket")
		os.Exit(1)
	}
	minioCancel()

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		logger.Errorf(err, "failed to initialize qdrant")
		os.Exit(1)
	}
	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		qdrantCancel()
		logger.Errorf(err, "failed to initialize qdrant")
		os.Exit(1)
	}
	qdrantCancel()
	c.Add(func(ctx context.Context) error {
		return qdrantClient.Client.Close()
	})

	embRepo := qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, cfg.Qdrant)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(redisCtx); err != nil {
		redisCancel()
		logger.Errorf(err, "failed to connect to redis")
		os.Exit(1)
	}
	redisCancel()
	c.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})

	cacheRepo := redis.NewCacheRepo(redisClient, cacheConv, cfg.Redis, logger)

	// Контекст живет до конца shutdown: из него фоновая компенсация в MinIO
	// выводит свои таймауты.
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, logger, cleanupCtx)
	c.Add(func(ctx context.Context) error {
		return imagesInfra.WaitForCleanup(ctx)
	})

	producer, err := kafka.NewProducer(logger, cfg.Kafka)
	if err != nil {
		logger.Errorf(err, "failed to initialize kafka producer")
		os.Exit(1)
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		logger.Errorf(err, "failed to ensure kafka topic")
		os.Exit(1)
	}
	c.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	processor := imgproc.NewProcessor(cfg.Ingest, logger)
	removalInfra := rembg.NewRemovalInfrastructure(rembg.NewClient(cfg.Rembg), cfg.Rembg, logger)

	wardrobeUC := usecase.NewWardrobeUC(
		itemRepo,
		outboxRepo,
		db.Pool,
		imagesInfra,
		embRepo,
		cacheRepo,
		logger,
	)

	ingestUC := usecase.NewIngestUC(
		processor,
		removalInfra,
		imagesInfra,
		wardrobeUC,
		logger,
		cfg.Ingest,
	)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	worker := kafka.NewOutboxWorker(outboxRepo, logger, producer, db.Dsn)
	worker.Start(workerCtx)
	c.Add(func(ctx context.Context) error {
		workerCancel()
		worker.Stop()
		return nil
	})

	ingestUC.StartJanitor()
	c.Add(func(ctx context.Context) error {
		ingestUC.Stop()
		return nil
	})

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, logger)
	router.Init(ingestUC, wardrobeUC, cfg.Ingest)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	c.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(err, "HTTP server failed: %v", err)
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := c.Close(shutdownCtx); err != nil {
		logger.Warnf("Graceful shutdown finished with errors: %v", err)
	} else {
		logger.Infof("Application shutdown complete")
	}

	if appErr != nil {
		os.Exit(1)
	}
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
