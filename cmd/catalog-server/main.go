package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/logging"
)

func main() {
	cfg, err := config.LoadCatalogServer()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fixture, err := loadFixture(cfg.FixturePath)
	if err != nil {
		logger.WithError(err).Fatal("load fixture")
	}

	var repo catalog.Repository
	switch cfg.Backend {
	case config.BackendPostgres:
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.WithError(err).Fatal("db migrate")
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.WithError(err).Fatal("db connect")
		}
		defer pool.Close()

		pg := catalog.NewPostgresRepository(pool)
		if err := pg.Seed(ctx, fixture); err != nil {
			logger.WithError(err).Fatal("seed catalog")
		}
		repo = pg
	default:
		repo = catalog.NewMemoryRepository(fixture)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           catalog.NewRouter(catalog.NewHandler(repo, logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "backend": cfg.Backend}).Info("catalog listening")
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
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("shutdown complete")
}

func loadFixture(path string) (catalog.Fixture, error) {
	if path == "" {
		return catalog.DefaultFixture(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return catalog.Fixture{}, err
	}
	defer f.Close()
	return catalog.DecodeFixture(f)
}
