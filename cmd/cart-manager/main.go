package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/notify"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/storage"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.LoadCartManager()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- tracing ---
	tp, err := telemetry.InitTracerProvider(ctx, telemetry.Options{
		ServiceName:    "cart-manager",
		ServiceVersion: version,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.WithError(err).Fatal("init tracer provider")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	// --- storage ---
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("open storage")
	}
	defer closeStore()

	// --- upstreams ---
	catalogClient := clients.NewCatalogClient(
		clients.NewClient("catalog", cfg.CatalogURL, &http.Client{Timeout: cfg.UpstreamTimeout}),
	)

	// --- notifications ---
	recorder := notify.NewRecorder(cfg.NotificationHistory)
	hub := notify.NewHub(notify.NewLogNotifier(logger), recorder)

	var publisher *events.Publisher
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.WithError(err).Fatal("rabbitmq")
		}
		defer conn.Close()

		publisher, err = events.NewPublisher(conn, events.PublisherOptions{
			CartKey: cfg.StorageKey,
			Logger:  logger,
		})
		if err != nil {
			logger.WithError(err).Fatal("create publisher")
		}
		defer publisher.Close()
		hub.Add(publisher)
	}

	// --- metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// --- cart ---
	opts := []cart.Option{
		cart.WithStorageKey(cfg.StorageKey),
		cart.WithLogger(logger),
		cart.WithTracerProvider(tp),
		cart.WithInstrumentation(metrics.NewCartMetrics(reg)),
	}
	if cfg.SerializeMutations {
		opts = append(opts, cart.WithSerializedMutations())
	}
	manager, err := cart.New(ctx, cart.Deps{
		Stock:    catalogClient,
		Catalog:  catalogClient,
		Store:    store,
		Notifier: hub,
	}, opts...)
	if err != nil {
		logger.WithError(err).Fatal("load cart")
	}
	if publisher != nil {
		manager.Subscribe(publisher.CartUpdated)
	}

	// --- HTTP ---
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         logger,
		Cart:           manager,
		Notifications:  recorder,
		HealthProbes:   []clients.HealthProbe{catalogClient.HealthProbe()},
		Metrics:        metrics.NewServerMetrics(reg, "cart-manager"),
		MetricsHandler: metrics.Handler(reg),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"catalog": cfg.CatalogURL,
			"storage": cfg.StorageBackend,
		}).Info("cart-manager listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}
	logger.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg config.CartManager, logger logrus.FieldLogger) (cart.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		s := storage.NewRedisStore(cfg.RedisAddr, logger)
		if err := s.Initialize(ctx); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.BackendPostgres:
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				return nil, nil, err
			}
		}
		sqlDB, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresStore(sqlDB), func() { _ = sqlDB.Close() }, nil

	case config.BackendMemory:
		return storage.NewMemoryStore(), func() {}, nil

	default:
		return storage.NewFileStore(cfg.StoragePath, logger), func() {}, nil
	}
}
