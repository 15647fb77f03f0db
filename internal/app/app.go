package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/api"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/orders"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

const defaultShutdownTimeout = 5 * time.Second

// Run поднимает хранилище, сервисы, публичный HTTP API, сервер метрик
// и outbox worker, затем блокируется до отмены ctx или падения API-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	catalogMetrics := metrics.NewCatalogMetrics()
	catalogSvc, orderSvc := newServices(deps, catalogMetrics)

	producer, _ := initKafkaProducer(cfg.Brokers(), cfg.KafkaClientID, logger)
	defer closeKafka(producer, logger)

	publisher, dlqPublisher := newOutboxPublishers(producer, cfg.KafkaTopic, logger)
	worker := outbox.NewWorker(deps.outboxRepo, publisher,
		outbox.WithLogger(log.WithField("component", "outbox-worker")),
		outbox.WithDLQPublisher(dlqPublisher),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	)
	workerCtx, cancelWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(workerCtx)
	}()
	defer shutdownOutboxWorker(cancelWorker, workerDone, logger)

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, newHealthHandler(deps))
	defer shutdownHTTP(metricsSrv, logger)

	apiSrv := &http.Server{
		Handler: api.NewRouter(api.Config{
			Catalog: catalogSvc,
			Orders:  orderSvc,
			Metrics: catalogMetrics,
			Logger:  log.WithField("component", "http"),
		}),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", lis.Addr())
		errCh <- apiSrv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownAPI(apiSrv, cfg.ShutdownTimeout, logger)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newServices собирает сервисы каталога и заказов поверх выбранного хранилища.
func newServices(deps *runtimeDependencies, m *metrics.CatalogMetrics) (*catalog.Service, *orders.Service) {
	catalogSvc := catalog.NewService(deps.products,
		catalog.WithOutbox(deps.outboxRepo),
		catalog.WithMetrics(m),
		catalog.WithLogger(log.WithField("component", "catalog-service")),
	)
	orderSvc := orders.NewService(deps.products, deps.orders, deps.ids,
		orders.WithOutbox(deps.outboxRepo),
		orders.WithMetrics(m),
		orders.WithLogger(log.WithField("component", "order-service")),
	)
	return catalogSvc, orderSvc
}

// newHealthHandler отдаёт версию сборки и проверяет выбранное хранилище.
func newHealthHandler(deps *runtimeDependencies) *healthcheck.Handler {
	h := healthcheck.NewHandler(version.Current().Label())
	if deps != nil && deps.storageChecker != nil {
		h.RegisterChecker("storage", deps.storageChecker)
	}
	return h
}

func newMetricsMux(healthHandler *healthcheck.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	return mux
}

// startMetricsServer запускает HTTP-обработчики /metrics и health checks.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: newMetricsMux(healthHandler)}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownAPI дожидается завершения активных запросов в пределах timeout.
func shutdownAPI(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("graceful shutdown превысил таймаут, закрываем соединения")
		_ = srv.Close()
	}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}

// shutdownOutboxWorker останавливает worker и ждёт завершения текущего цикла.
func shutdownOutboxWorker(cancel context.CancelFunc, done <-chan struct{}, logger *log.Entry) {
	if cancel != nil {
		cancel()
	}
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(defaultShutdownTimeout):
		logger.Warn("outbox worker did not stop in time")
	}
}
