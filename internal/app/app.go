package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/catalog-api/internal/cfg"
	v1Http "github.com/DRSN-tech/catalog-api/internal/delivery/v1/http"
	"github.com/DRSN-tech/catalog-api/internal/infrastructure/kafka"
	"github.com/DRSN-tech/catalog-api/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/catalog-api/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-api/internal/repository/redis"
	"github.com/DRSN-tech/catalog-api/internal/usecase"
	"github.com/DRSN-tech/catalog-api/pkg/clients"
	"github.com/DRSN-tech/catalog-api/pkg/closer"
	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
	"github.com/DRSN-tech/catalog-api/pkg/metrics"
	"github.com/DRSN-tech/catalog-api/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout     = 10 * time.Second
	ensureTopicTimeout = 10 * time.Second
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	db      *postgres.PgDatabase
	httpSrv *v1Http.Server
	outbox  *kafka.OutboxWorker
}

// NewApp поднимает все зависимости. Уже открытые ресурсы регистрируются в closer,
// поэтому при ошибке они закрываются до возврата.
func NewApp(cfg *config.Config, log logger.Logger) (_ *App, err error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(cfg.Http.ShutdownTimeout),
	}
	defer func() {
		if err != nil {
			if cerr := a.closer.Close(context.Background()); cerr != nil {
				log.Warnf("cleanup after failed start: %v", cerr)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a.db, err = initPGDB(ctx, log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("postgres", func(context.Context) error {
		a.db.Close()
		return nil
	})

	m := metrics.New(metrics.WithRuntimeCollectors())

	cache, err := a.initCategoryCache(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	events, err := a.initOutbox(m)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catalogUC := usecase.NewCatalogUC(
		pgdb.NewSessionManager(a.db.Pool),
		pgdb.NewCategoryRepo(pgdbConv.NewCategoryConverterImpl()),
		pgdb.NewProductRepo(pgdbConv.NewProductConverterImpl()),
		events,
		cache,
		m,
		log,
	)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(catalogUC, a.db, m, cfg.Http)

	a.httpSrv = v1Http.NewServer(r, cfg.Http)
	a.closer.Add("http server", a.httpSrv.Stop)

	return a, nil
}

// Run блокируется до сигнала завершения или падения HTTP-сервера.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.outbox != nil {
		a.outbox.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on %s", a.httpSrv.Addr())
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-ctx.Done():
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Http.ShutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown error")
		if appErr == nil {
			appErr = err
		}
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

// initCategoryCache возвращает кэш-заглушку, если Redis не настроен
func (a *App) initCategoryCache(ctx context.Context) (usecase.CategoryCache, error) {
	if !a.cfg.Redis.Enabled {
		a.logger.Infof("Redis is not configured, category cache disabled")
		return usecase.NopCategoryCache{}, nil
	}

	redisClient := clients.NewRedisClient(a.cfg.Redis)
	if err := redisClient.Ping(ctx); err != nil {
		_ = redisClient.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.AddErrFunc("redis", redisClient.Close)

	a.logger.Infof("Category cache enabled, redis %s", a.cfg.Redis.Addr)
	return redis.NewCategoryCache(redisClient.Client, a.cfg.Redis, a.logger), nil
}

// initOutbox включает запись событий в outbox и воркер публикации, если задан Kafka
func (a *App) initOutbox(m *metrics.Metrics) (usecase.EventRecorder, error) {
	if !a.cfg.Kafka.Enabled {
		a.logger.Infof("Kafka is not configured, catalog events disabled")
		return usecase.NopEventRecorder{}, nil
	}

	producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
	a.closer.AddErrFunc("kafka producer", producer.Close)

	if err := producer.EnsureTopic(ensureTopicTimeout); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	outboxRepo := pgdb.NewOutboxEventRepo(a.db.Pool, pgdbConv.NewOutboxEventConverterImpl())
	a.outbox = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, m, a.cfg.Kafka.BatchSize, a.db.Dsn)
	a.closer.Add("outbox worker", a.outbox.Stop)

	return outboxRepo, nil
}

// Migrate применяет (steps == 0) или откатывает steps миграций без запуска сервера.
func Migrate(cfg *config.Config, log logger.Logger, down bool, steps int) error {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer db.Close()

	if down {
		return db.RollbackMigrations(log, steps)
	}
	return db.RunMigrations(log)
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
