package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/templatehub/internal/api"
	"github.com/shaiso/templatehub/internal/catalog"
	"github.com/shaiso/templatehub/internal/config"
	"github.com/shaiso/templatehub/internal/mq"
	"github.com/shaiso/templatehub/internal/reporter"
	"github.com/shaiso/templatehub/internal/repo"
	"github.com/shaiso/templatehub/internal/telemetry"
)

var (
	startTime    = time.Now()
	healthChecks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "templatehub_api_health_checks_total",
		Help: "Total health checks handled by templatehub-api",
	})
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Инициализируем structured logging
	logger := telemetry.SetupLogger(telemetry.LogOptions{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	logger.Info("starting templatehub-api", "store", cfg.Store)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	notifier, closeNotifier, err := openNotifier(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer closeNotifier()

	service := catalog.New(catalog.Config{
		Store:    store,
		Notifier: notifier,
		Logger:   logger,
	})

	// Метрики каталога по расписанию
	if cfg.StatsCron != "" {
		rep, err := reporter.New(reporter.Config{
			Source:   service,
			Schedule: cfg.StatsCron,
			Logger:   logger,
		})
		if err != nil {
			logger.Error("invalid stats schedule", "error", err)
			os.Exit(1)
		}
		go rep.Run(ctx)
	}

	handler := api.NewHandler(api.Config{
		Service: service,
		Logger:  logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		healthChecks.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// openStore создаёт хранилище шаблонов согласно cfg.Store.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (catalog.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store, data will be lost on restart")
		return repo.NewMemoryStore(), func() {}, nil
	}

	pool, err := repo.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("connected to database")

	return repo.NewTemplateRepo(pool), pool.Close, nil
}

// openNotifier подключается к RabbitMQ. Без AMQP_URL события не публикуются.
func openNotifier(cfg *config.Config, logger *slog.Logger) (catalog.Notifier, func(), error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL not set, template events disabled")
		return catalog.NopNotifier{}, func() {}, nil
	}

	conn, err := mq.Dial(mq.ConnectionConfig{
		URL:    cfg.AMQPURL,
		Logger: logger,
		Setup:  mq.DeclareTopology,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to RabbitMQ", "topology", mq.TopologyInfo())

	return mq.NewPublisher(conn, logger), func() { conn.Close() }, nil
}
