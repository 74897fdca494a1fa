package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/catalog"
	"RocketShoes/internal/config"
	"RocketShoes/pkg/kit"
)

func main() {
	service := "catalog"

	cfg, err := config.LoadCatalog()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("open catalog store", zap.Error(err))
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	h := catalog.NewHandler(&catalog.Server{Store: store, Log: log}, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
		closeStore()
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Catalog, log *zap.Logger) (catalog.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL not set, serving the in-memory demo catalog")
		return catalog.NewSeededStore(), func() {}, nil
	}

	pg, err := catalog.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return nil, nil, err
	}
	if cfg.SeedDemo {
		if err := pg.Seed(ctx, catalog.DemoProducts(), catalog.DemoStock()); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
	}
	return pg, func() { _ = pg.Close() }, nil
}
